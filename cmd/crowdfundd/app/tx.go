package app

import (
	"bytes"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x/campaign"
	"github.com/iov-one/crowdfund/x/cash"
	"github.com/iov-one/crowdfund/x/sigs"
	"golang.org/x/crypto/ed25519"
)

// maxSignatures limits the signatures a single envelope may carry.
const maxSignatures = 16

// Tx is the envelope submitted to the chain. It carries one
// instruction and the signatures over it. On the wire it is a protobuf
// message, the instruction keeps its own fixed layout inside.
type Tx struct {
	Signatures  []*sigs.StdSignature
	Instruction []byte
}

// make sure tx fulfills all interfaces
var _ crowdfund.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (crowdfund.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, err
	}
	return tx, nil
}

// NewTx wraps the serialized msg into an unsigned transaction.
func NewTx(msg crowdfund.Msg) (*Tx, error) {
	raw, err := msg.Marshal()
	if err != nil {
		return nil, err
	}
	return &Tx{Instruction: raw}, nil
}

// Sign appends the signature of key with the given sequence.
func (tx *Tx) Sign(key ed25519.PrivateKey, chainID string, seq int64) error {
	sig, err := sigs.SignTx(key, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

// GetMsg decodes the instruction, picking the message type by its
// discriminator.
func (tx *Tx) GetMsg() (crowdfund.Msg, error) {
	if len(tx.Instruction) < crowdfund.DiscriminatorLength {
		return nil, errors.Wrap(errors.ErrInput, "instruction too short")
	}
	tag := tx.Instruction[:crowdfund.DiscriminatorLength]

	var msg crowdfund.Msg
	switch {
	case bytes.Equal(tag, cash.SendDiscriminator):
		msg = &cash.SendMsg{}
	case bytes.Equal(tag, campaign.InitializeDiscriminator):
		msg = &campaign.InitializeMsg{}
	case bytes.Equal(tag, campaign.DonateDiscriminator):
		msg = &campaign.DonateMsg{}
	case bytes.Equal(tag, campaign.WithdrawDiscriminator):
		msg = &campaign.WithdrawMsg{}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown instruction %X", tag)
	}
	if err := msg.Unmarshal(tx.Instruction); err != nil {
		return nil, err
	}
	return msg, nil
}

// GetSignBytes returns the instruction. Signatures never cover other
// signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	if len(tx.Instruction) == 0 {
		return nil, errors.Wrap(errors.ErrEmpty, "instruction")
	}
	return tx.Instruction, nil
}

// GetSignatures returns all signatures of the envelope.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// Marshal encodes the envelope as a protobuf message.
func (tx *Tx) Marshal() ([]byte, error) {
	if len(tx.Signatures) > maxSignatures {
		return nil, errors.Wrapf(errors.ErrInput, "too many signatures: %d", len(tx.Signatures))
	}
	for i, sig := range tx.Signatures {
		if err := sig.Validate(); err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
	}
	raw, err := proto.Marshal(&txPB{Signatures: tx.Signatures, Instruction: tx.Instruction})
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// Unmarshal decodes data produced by Marshal. Signatures are only
// counted here, the signature decorator validates them.
func (tx *Tx) Unmarshal(raw []byte) error {
	var pb txPB
	if err := proto.Unmarshal(raw, &pb); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if len(pb.Signatures) > maxSignatures {
		return errors.Wrapf(errors.ErrInput, "too many signatures: %d", len(pb.Signatures))
	}
	if len(pb.Instruction) == 0 {
		return errors.Wrap(errors.ErrInput, "missing instruction")
	}
	tx.Signatures = pb.Signatures
	tx.Instruction = pb.Instruction
	return nil
}

type txPB struct {
	Signatures  []*sigs.StdSignature `protobuf:"bytes,1,rep,name=signatures,proto3" json:"signatures,omitempty"`
	Instruction []byte               `protobuf:"bytes,2,opt,name=instruction,proto3" json:"instruction,omitempty"`
}

func (m *txPB) Reset()         { *m = txPB{} }
func (m *txPB) String() string { return proto.CompactTextString(m) }
func (*txPB) ProtoMessage()    {}
