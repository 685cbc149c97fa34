package sigs

import (
	"github.com/iov-one/crowdfund"
)

// stdTx carries raw sign bytes and signatures.
type stdTx struct {
	Payload    []byte
	Signatures []*StdSignature
}

var _ SignedTx = (*stdTx)(nil)
var _ crowdfund.Tx = (*stdTx)(nil)

func newStdTx(payload []byte) *stdTx {
	return &stdTx{Payload: payload}
}

func (tx *stdTx) GetSignBytes() ([]byte, error) {
	return tx.Payload, nil
}

func (tx *stdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *stdTx) GetMsg() (crowdfund.Msg, error) {
	return nil, nil
}

func (tx *stdTx) Marshal() ([]byte, error) {
	return tx.Payload, nil
}

func (tx *stdTx) Unmarshal(raw []byte) error {
	tx.Payload = raw
	return nil
}

// sigCheckHandler stores the seen signers on each call
type sigCheckHandler struct {
	Signers []crowdfund.Address
}

var _ crowdfund.Handler = (*sigCheckHandler)(nil)

func (s *sigCheckHandler) Check(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	s.Signers = Authenticate{}.GetSigners(ctx)
	return &crowdfund.CheckResult{}, nil
}

func (s *sigCheckHandler) Deliver(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	s.Signers = Authenticate{}.GetSigners(ctx)
	return &crowdfund.DeliverResult{}, nil
}
