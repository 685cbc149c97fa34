package cash

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

const pathSendMsg = "cash/send"

// SendDiscriminator tags a serialized SendMsg.
var SendDiscriminator = crowdfund.Discriminator("global", "transfer")

// SendMsg moves Amount from Source to Destination. The accounts are
// serialized in the order [source, destination].
type SendMsg struct {
	Source      crowdfund.Address
	Destination crowdfund.Address
	Amount      uint64
}

var _ crowdfund.Msg = (*SendMsg)(nil)

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return pathSendMsg
}

// Validate makes sure that this is sensible
func (m SendMsg) Validate() error {
	if err := m.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := m.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	return nil
}

// Marshal writes the instruction layout.
func (m SendMsg) Marshal() ([]byte, error) {
	w := crowdfund.NewInstructionWriter(SendDiscriminator).
		Uint64(m.Amount).
		Fixed(m.Source).
		Fixed(m.Destination)
	return w.Bytes(), nil
}

// Unmarshal reads the instruction layout.
func (m *SendMsg) Unmarshal(raw []byte) error {
	r := crowdfund.NewInstructionReader(raw, SendDiscriminator)
	m.Amount = r.Uint64()
	m.Source = r.Address()
	m.Destination = r.Address()
	return r.Done()
}
