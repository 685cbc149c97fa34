package campaign

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x/cash"
)

const (
	pathInitializeMsg = "campaign/initialize"
	pathDonateMsg     = "campaign/donate"
	pathWithdrawMsg   = "campaign/withdraw"
)

// Instruction discriminators.
var (
	InitializeDiscriminator = crowdfund.Discriminator("global", "initialize")
	DonateDiscriminator     = crowdfund.Discriminator("global", "donate")
	WithdrawDiscriminator   = crowdfund.Discriminator("global", "withdraw")
)

// InitializeMsg creates a campaign. Accounts are serialized in the
// order [campaign, authority, system].
type InitializeMsg struct {
	Goal       uint64
	Deadline   crowdfund.UnixTime
	CampaignID [32]byte

	Campaign  crowdfund.Address
	Authority crowdfund.Address
	System    crowdfund.Address
}

var _ crowdfund.Msg = (*InitializeMsg)(nil)

// NewInitializeMsg fills in the derived campaign address and the system
// account.
func NewInitializeMsg(authority crowdfund.Address, id [32]byte, goal uint64, deadline crowdfund.UnixTime) (*InitializeMsg, error) {
	addr, _, err := CampaignAddress(authority, id)
	if err != nil {
		return nil, err
	}
	return &InitializeMsg{
		Goal:       goal,
		Deadline:   deadline,
		CampaignID: id,
		Campaign:   addr,
		Authority:  authority,
		System:     cash.SystemProgramID,
	}, nil
}

// Path returns the routing path for this message
func (InitializeMsg) Path() string {
	return pathInitializeMsg
}

// Validate checks the account references. Goal and deadline accept any
// value.
func (m InitializeMsg) Validate() error {
	return validateAccounts(m.Campaign, m.Authority, m.System)
}

// Marshal writes the instruction layout.
func (m InitializeMsg) Marshal() ([]byte, error) {
	w := crowdfund.NewInstructionWriter(InitializeDiscriminator).
		Uint64(m.Goal).
		Int64(int64(m.Deadline)).
		Fixed(m.CampaignID[:]).
		Fixed(m.Campaign).
		Fixed(m.Authority).
		Fixed(m.System)
	return w.Bytes(), nil
}

// Unmarshal reads the instruction layout.
func (m *InitializeMsg) Unmarshal(raw []byte) error {
	r := crowdfund.NewInstructionReader(raw, InitializeDiscriminator)
	m.Goal = r.Uint64()
	m.Deadline = crowdfund.UnixTime(r.Int64())
	copy(m.CampaignID[:], r.Fixed(32))
	m.Campaign = r.Address()
	m.Authority = r.Address()
	m.System = r.Address()
	return r.Done()
}

// DonateMsg moves Amount from the donor to the campaign escrow.
// Accounts are serialized in the order [campaign, donor, system].
type DonateMsg struct {
	Amount uint64

	Campaign crowdfund.Address
	Donor    crowdfund.Address
	System   crowdfund.Address
}

var _ crowdfund.Msg = (*DonateMsg)(nil)

// Path returns the routing path for this message
func (DonateMsg) Path() string {
	return pathDonateMsg
}

// Validate checks the account references. Any amount is accepted.
func (m DonateMsg) Validate() error {
	return validateAccounts(m.Campaign, m.Donor, m.System)
}

// Marshal writes the instruction layout.
func (m DonateMsg) Marshal() ([]byte, error) {
	w := crowdfund.NewInstructionWriter(DonateDiscriminator).
		Uint64(m.Amount).
		Fixed(m.Campaign).
		Fixed(m.Donor).
		Fixed(m.System)
	return w.Bytes(), nil
}

// Unmarshal reads the instruction layout.
func (m *DonateMsg) Unmarshal(raw []byte) error {
	r := crowdfund.NewInstructionReader(raw, DonateDiscriminator)
	m.Amount = r.Uint64()
	m.Campaign = r.Address()
	m.Donor = r.Address()
	m.System = r.Address()
	return r.Done()
}

// WithdrawMsg drains the campaign escrow to its authority.
// Accounts are serialized in the order [campaign, creator, system].
type WithdrawMsg struct {
	Campaign crowdfund.Address
	Creator  crowdfund.Address
	System   crowdfund.Address
}

var _ crowdfund.Msg = (*WithdrawMsg)(nil)

// Path returns the routing path for this message
func (WithdrawMsg) Path() string {
	return pathWithdrawMsg
}

// Validate checks the account references.
func (m WithdrawMsg) Validate() error {
	return validateAccounts(m.Campaign, m.Creator, m.System)
}

// Marshal writes the instruction layout.
func (m WithdrawMsg) Marshal() ([]byte, error) {
	w := crowdfund.NewInstructionWriter(WithdrawDiscriminator).
		Fixed(m.Campaign).
		Fixed(m.Creator).
		Fixed(m.System)
	return w.Bytes(), nil
}

// Unmarshal reads the instruction layout.
func (m *WithdrawMsg) Unmarshal(raw []byte) error {
	r := crowdfund.NewInstructionReader(raw, WithdrawDiscriminator)
	m.Campaign = r.Address()
	m.Creator = r.Address()
	m.System = r.Address()
	return r.Done()
}

func validateAccounts(campaign, signer, system crowdfund.Address) error {
	if err := campaign.Validate(); err != nil {
		return errors.Wrap(err, "campaign account")
	}
	if err := signer.Validate(); err != nil {
		return errors.Wrap(err, "signer account")
	}
	if err := system.Validate(); err != nil {
		return errors.Wrap(err, "system account")
	}
	return nil
}
