package campaign

import (
	"encoding/hex"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

const optKey = "campaign"

// GenesisCampaign is a campaign created at chain start. The campaign
// id is hex encoded and must be 32 bytes.
type GenesisCampaign struct {
	Authority  crowdfund.Address  `json:"authority"`
	CampaignID string             `json:"campaign_id"`
	Goal       uint64             `json:"goal"`
	Deadline   crowdfund.UnixTime `json:"deadline"`
}

// Initializer fulfils the Initializer interface to load data from
// the genesis file
type Initializer struct{}

var _ crowdfund.Initializer = Initializer{}

// FromGenesis creates all listed campaigns at their derived addresses.
func (Initializer) FromGenesis(opts crowdfund.Options, db crowdfund.KVStore) error {
	var campaigns []GenesisCampaign
	if err := opts.ReadOptions(optKey, &campaigns); err != nil {
		return err
	}
	bucket := NewBucket()
	for i, gc := range campaigns {
		id, err := ParseCampaignID(gc.CampaignID)
		if err != nil {
			return errors.Wrapf(err, "campaign %d", i)
		}
		if err := gc.Authority.Validate(); err != nil {
			return errors.Wrapf(err, "campaign %d authority", i)
		}
		addr, nonce, err := CampaignAddress(gc.Authority, id)
		if err != nil {
			return err
		}
		c := &Campaign{
			Authority:  gc.Authority,
			Goal:       gc.Goal,
			Deadline:   gc.Deadline,
			Nonce:      nonce,
			CampaignID: id,
		}
		if err := bucket.Create(db, NewCampaign(addr, c)); err != nil {
			return errors.Wrapf(err, "campaign %d", i)
		}
	}
	return nil
}

// ParseCampaignID decodes a hex encoded 32 byte campaign id.
func ParseCampaignID(enc string) ([32]byte, error) {
	var id [32]byte
	raw, err := hex.DecodeString(enc)
	if err != nil {
		return id, errors.Wrap(errors.ErrInput, "campaign id must be hex")
	}
	if len(raw) != len(id) {
		return id, errors.Wrapf(errors.ErrInput, "campaign id must be 32 bytes, got %d", len(raw))
	}
	copy(id[:], raw)
	return id, nil
}
