package campaign

import (
	"encoding/binary"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
)

const (
	// BucketName is where we store the campaigns
	BucketName = "campaign"

	// SeedTag is the namespace seed of every campaign address.
	SeedTag = "campaign"

	// AccountSize is the exact serialized size of a campaign.
	AccountSize = crowdfund.DiscriminatorLength + 32 + 8 + 8 + 8 + 1 + 32
)

var (
	// ProgramID owns all campaign addresses.
	ProgramID = crowdfund.MustParseAddress("base58:8AwEsUh1mXnd4KG2n8AmtqnbuDawmeSpgNAiLPyrtZy7")

	// AccountDiscriminator prefixes every serialized campaign.
	AccountDiscriminator = crowdfund.Discriminator("account", "CampaignAccount")
)

// Campaign holds the terms of one crowdfunding effort and the amount
// raised so far. The escrowed funds are not part of it, they are held
// by the wallet of the campaign address.
type Campaign struct {
	Authority   crowdfund.Address
	Goal        uint64
	Deadline    crowdfund.UnixTime
	TotalRaised uint64
	Nonce       uint8
	CampaignID  [32]byte
}

var _ orm.CloneableData = (*Campaign)(nil)

// Validate ensures the campaign can be serialized. Goal and deadline
// accept any value.
func (c *Campaign) Validate() error {
	if err := c.Authority.Validate(); err != nil {
		return errors.Wrap(err, "authority")
	}
	return nil
}

// Copy makes a deep copy of the campaign.
func (c *Campaign) Copy() orm.CloneableData {
	cpy := *c
	cpy.Authority = c.Authority.Clone()
	return &cpy
}

// Marshal writes the fixed account layout:
//
//   discriminator | authority | goal | deadline | total_raised | nonce | campaign_id
//   8 bytes       | 32 bytes  | u64  | i64      | u64          | u8    | 32 bytes
//
// All integers are little endian.
func (c *Campaign) Marshal() ([]byte, error) {
	if err := c.Authority.Validate(); err != nil {
		return nil, errors.Wrap(err, "authority")
	}
	raw := make([]byte, AccountSize)
	n := copy(raw, AccountDiscriminator)
	n += copy(raw[n:], c.Authority)
	binary.LittleEndian.PutUint64(raw[n:], c.Goal)
	n += 8
	binary.LittleEndian.PutUint64(raw[n:], uint64(c.Deadline))
	n += 8
	binary.LittleEndian.PutUint64(raw[n:], c.TotalRaised)
	n += 8
	raw[n] = c.Nonce
	n++
	copy(raw[n:], c.CampaignID[:])
	return raw, nil
}

// Unmarshal reads data produced by Marshal. Data of another size or
// with another discriminator is rejected.
func (c *Campaign) Unmarshal(raw []byte) error {
	if len(raw) != AccountSize {
		return errors.Wrapf(errors.ErrModel, "campaign must be %d bytes, got %d", AccountSize, len(raw))
	}
	if string(raw[:crowdfund.DiscriminatorLength]) != string(AccountDiscriminator) {
		return errors.Wrap(errors.ErrModel, "not a campaign account")
	}
	n := crowdfund.DiscriminatorLength
	c.Authority = append(crowdfund.Address(nil), raw[n:n+32]...)
	n += 32
	c.Goal = binary.LittleEndian.Uint64(raw[n:])
	n += 8
	c.Deadline = crowdfund.UnixTime(binary.LittleEndian.Uint64(raw[n:]))
	n += 8
	c.TotalRaised = binary.LittleEndian.Uint64(raw[n:])
	n += 8
	c.Nonce = raw[n]
	n++
	copy(c.CampaignID[:], raw[n:])
	return nil
}

// IsExpired returns true once the deadline has passed. Donations
// made exactly at the deadline are still accepted.
func (c *Campaign) IsExpired(now crowdfund.UnixTime) bool {
	return now > c.Deadline
}

// CanWithdraw returns true if the goal is met and the deadline has
// passed.
func (c *Campaign) CanWithdraw(now crowdfund.UnixTime) bool {
	return c.TotalRaised >= c.Goal && c.IsExpired(now)
}

// Status is the lifecycle state of a campaign. It is derived from the
// stored fields, the escrow balance and the current time, and is never
// stored.
type Status int

const (
	// StatusOpen accepts donations.
	StatusOpen Status = iota
	// StatusFailed passed the deadline without reaching the goal.
	StatusFailed
	// StatusSucceeded passed the deadline, reached the goal and still
	// holds funds.
	StatusSucceeded
	// StatusDrained has been withdrawn.
	StatusDrained
)

var statusNames = map[Status]string{
	StatusOpen:      "open",
	StatusFailed:    "failed",
	StatusSucceeded: "succeeded",
	StatusDrained:   "drained",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// Status returns the lifecycle state at the given time for the given
// escrow balance.
func (c *Campaign) Status(now crowdfund.UnixTime, escrow uint64) Status {
	switch {
	case !c.IsExpired(now):
		return StatusOpen
	case c.TotalRaised < c.Goal:
		return StatusFailed
	case escrow == 0:
		return StatusDrained
	default:
		return StatusSucceeded
	}
}

// CampaignAddress derives the address of the campaign created by
// authority with the given id. It returns the canonical nonce that has
// to be stored with the campaign.
func CampaignAddress(authority crowdfund.Address, id [32]byte) (crowdfund.Address, uint8, error) {
	return crowdfund.FindDerivedAddress(ProgramID, []byte(SeedTag), authority, id[:])
}

// VerifyAddress re-derives the campaign address with the stored nonce
// and compares it to the address the campaign was loaded from.
func VerifyAddress(addr crowdfund.Address, c *Campaign) error {
	want, err := crowdfund.CreateDerivedAddress(ProgramID, c.Nonce, []byte(SeedTag), c.Authority, c.CampaignID[:])
	if err != nil {
		return errors.Wrap(errors.ErrConstraintSeeds, err.Error())
	}
	if !want.Equals(addr) {
		return errors.Wrapf(errors.ErrConstraintSeeds, "campaign address %s, derived %s", addr, want)
	}
	return nil
}

//-------------------- Object Wrapper -------

// AsCampaign will safely type-cast any value from Bucket to a Campaign
func AsCampaign(obj orm.Object) *Campaign {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Campaign)
}

// NewCampaign creates the object stored under the derived address.
func NewCampaign(addr crowdfund.Address, c *Campaign) orm.Object {
	return orm.NewSimpleObj(addr, c)
}

// Bucket stores campaigns by their derived address.
type Bucket struct {
	orm.Bucket
}

// NewBucket creates the proper bucket for this extension
func NewBucket() Bucket {
	b := orm.NewBucket(BucketName, NewCampaign(nil, &Campaign{})).
		WithIndex("authority", authorityIndex, false)
	return Bucket{Bucket: b}
}

func authorityIndex(obj orm.Object) ([]byte, error) {
	c := AsCampaign(obj)
	if c == nil {
		return nil, errors.Wrapf(errors.ErrState, "cannot take index of %T", obj.Value())
	}
	return c.Authority, nil
}

// GetCampaign loads the campaign stored at addr and verifies that addr
// is its derived address.
func (b Bucket) GetCampaign(db crowdfund.ReadOnlyKVStore, addr crowdfund.Address) (*Campaign, error) {
	obj, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	c := AsCampaign(obj)
	if c == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "campaign %s", addr)
	}
	if err := VerifyAddress(addr, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ByAuthority returns all campaigns created by the authority.
func (b Bucket) ByAuthority(db crowdfund.ReadOnlyKVStore, authority crowdfund.Address) ([]orm.Object, error) {
	return b.GetIndexed(db, "authority", authority)
}
