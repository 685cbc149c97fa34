package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Wallet holds the balance of one address.
type Wallet struct {
	Balance uint64
}

var _ orm.CloneableData = (*Wallet)(nil)

// Validate accepts every balance, including zero.
func (w *Wallet) Validate() error {
	return nil
}

// Copy makes a new wallet with the same balance.
func (w *Wallet) Copy() orm.CloneableData {
	return &Wallet{Balance: w.Balance}
}

func (w *Wallet) Marshal() ([]byte, error) {
	raw, err := proto.Marshal(&walletPB{Balance: w.Balance})
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return raw, nil
}

func (w *Wallet) Unmarshal(raw []byte) error {
	var pb walletPB
	if err := proto.Unmarshal(raw, &pb); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	w.Balance = pb.Balance
	return nil
}

type walletPB struct {
	Balance uint64 `protobuf:"varint,1,opt,name=balance,proto3" json:"balance,omitempty"`
}

func (m *walletPB) Reset()         { *m = walletPB{} }
func (m *walletPB) String() string { return proto.CompactTextString(m) }
func (*walletPB) ProtoMessage()    {}

// Add increases the balance, failing on overflow.
func (w *Wallet) Add(amount uint64) error {
	sum := w.Balance + amount
	if sum < w.Balance {
		return errors.Wrap(errors.ErrOverflow, "wallet balance")
	}
	w.Balance = sum
	return nil
}

// Subtract decreases the balance, failing when funds are missing.
func (w *Wallet) Subtract(amount uint64) error {
	if w.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, want %d", w.Balance, amount)
	}
	w.Balance -= amount
	return nil
}

// AsWallet will safely type-cast any value from Bucket to a Wallet
func AsWallet(obj orm.Object) *Wallet {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Wallet)
}

// NewWallet creates an empty wallet object for the address.
func NewWallet(addr crowdfund.Address) orm.Object {
	return orm.NewSimpleObj(addr, &Wallet{})
}

// WalletWith creates a wallet object holding the given balance.
func WalletWith(addr crowdfund.Address, balance uint64) (orm.Object, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return orm.NewSimpleObj(addr, &Wallet{Balance: balance}), nil
}

// Bucket extends orm.Bucket with GetOrCreate
type Bucket struct {
	orm.Bucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, NewWallet(nil)),
	}
}

// GetOrCreate returns the wallet of addr, an empty one if none exist.
func (b Bucket) GetOrCreate(db crowdfund.KVStore, addr crowdfund.Address) (orm.Object, error) {
	obj, err := b.Get(db, addr)
	if err == nil && obj == nil {
		obj = NewWallet(addr)
	}
	return obj, err
}

// SystemProgramID is the account that names the transfer primitive in
// instruction account lists.
var SystemProgramID = crowdfund.Address(make([]byte, crowdfund.AddressLength))
