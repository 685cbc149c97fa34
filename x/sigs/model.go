package sigs

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
)

// BucketName is where we store the accounts
const BucketName = "sigs"

//---- UserData
// Model stores the persistent state and all domain logic
// associated with valid state and state transitions.

// UserData tracks the next expected sequence of a signing key.
type UserData struct {
	Sequence int64
}

var _ orm.CloneableData = (*UserData)(nil)

// Validate rejects negative sequences.
func (u *UserData) Validate() error {
	if u.Sequence < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	return nil
}

// Copy makes a new UserData with the same sequence
func (u *UserData) Copy() orm.CloneableData {
	return &UserData{Sequence: u.Sequence}
}

// Marshal encodes the user as a protobuf message.
func (u *UserData) Marshal() ([]byte, error) {
	raw, err := proto.Marshal(&userDataPB{Sequence: u.Sequence})
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return raw, nil
}

// Unmarshal decodes data produced by Marshal.
func (u *UserData) Unmarshal(raw []byte) error {
	var pb userDataPB
	if err := proto.Unmarshal(raw, &pb); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	u.Sequence = pb.Sequence
	return nil
}

// userDataPB is the stored form of UserData.
type userDataPB struct {
	Sequence int64 `protobuf:"varint,1,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

func (m *userDataPB) Reset()         { *m = userDataPB{} }
func (m *userDataPB) String() string { return proto.CompactTextString(m) }
func (*userDataPB) ProtoMessage()    {}

// CheckAndIncrementSequence implements check and increment operation.
// If current sequence value is the same as given expected value then it is
// incremented. Otherwise an error is returned.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}
	next := u.Sequence + 1
	if next <= 0 {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence = next
	return nil
}

//-------------------- Object Wrapper -------

// AsUser will safely type-cast any value from Bucket to a UserData
func AsUser(obj orm.Object) *UserData {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*UserData)
}

// NewUser constructs an object for the given address
func NewUser(addr crowdfund.Address) orm.Object {
	return orm.NewSimpleObj(addr, &UserData{})
}

// Bucket extends orm.Bucket with GetOrCreate
type Bucket struct {
	orm.Bucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	return Bucket{
		Bucket: orm.NewBucket(BucketName, NewUser(nil)),
	}
}

// GetOrCreate initializes a UserData if none exist for that key
func (b Bucket) GetOrCreate(db crowdfund.KVStore, addr crowdfund.Address) (orm.Object, error) {
	obj, err := b.Get(db, addr)
	if err == nil && obj == nil {
		obj = NewUser(addr)
	}
	return obj, err
}
