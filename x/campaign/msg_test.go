package campaign

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/weavetest"
	"github.com/iov-one/crowdfund/weavetest/assert"
	"github.com/iov-one/crowdfund/x/cash"
)

func globalTag(name string) []byte {
	h := sha256.Sum256([]byte("global:" + name))
	return h[:8]
}

func TestInitializeMsgEncoding(t *testing.T) {
	authority := weavetest.NewAddress()
	msg, err := NewInitializeMsg(authority, campaignID(5), 1000, T+100)
	assert.Nil(t, err)
	assert.Equal(t, cash.SystemProgramID, msg.System)

	raw, err := msg.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, 8+8+8+32+3*32, len(raw))
	assert.Equal(t, globalTag("initialize"), raw[:8])
	assert.Equal(t, uint64(1000), binary.LittleEndian.Uint64(raw[8:16]))
	assert.Equal(t, int64(T+100), int64(binary.LittleEndian.Uint64(raw[16:24])))
	assert.Equal(t, bytes.Repeat([]byte{5}, 32), raw[24:56])
	assert.Equal(t, []byte(msg.Campaign), raw[56:88])
	assert.Equal(t, []byte(authority), raw[88:120])
	assert.Equal(t, []byte(cash.SystemProgramID), raw[120:152])

	var got InitializeMsg
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, *msg, got)
}

func TestDonateMsgEncoding(t *testing.T) {
	msg := donate(weavetest.NewAddress(), weavetest.NewAddress(), 600)
	raw, err := msg.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, 8+8+3*32, len(raw))
	assert.Equal(t, globalTag("donate"), raw[:8])
	assert.Equal(t, uint64(600), binary.LittleEndian.Uint64(raw[8:16]))
	assert.Equal(t, []byte(msg.Campaign), raw[16:48])
	assert.Equal(t, []byte(msg.Donor), raw[48:80])

	var got DonateMsg
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, *msg, got)
}

func TestWithdrawMsgEncoding(t *testing.T) {
	msg := withdraw(weavetest.NewAddress(), weavetest.NewAddress())
	raw, err := msg.Marshal()
	assert.Nil(t, err)
	assert.Equal(t, 8+3*32, len(raw))
	assert.Equal(t, globalTag("withdraw"), raw[:8])
	assert.Equal(t, []byte(msg.Creator), raw[40:72])

	var got WithdrawMsg
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, *msg, got)
}

func TestMsgUnmarshalRejects(t *testing.T) {
	donateRaw, err := donate(weavetest.NewAddress(), weavetest.NewAddress(), 1).Marshal()
	assert.Nil(t, err)

	cases := map[string]struct {
		msg interface{ Unmarshal([]byte) error }
		raw []byte
	}{
		"other instruction": {msg: &WithdrawMsg{}, raw: donateRaw},
		"truncated":         {msg: &DonateMsg{}, raw: donateRaw[:len(donateRaw)-1]},
		"trailing bytes":    {msg: &DonateMsg{}, raw: append(append([]byte{}, donateRaw...), 1)},
		"empty":             {msg: &InitializeMsg{}, raw: nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.IsErr(t, errors.ErrInput, tc.msg.Unmarshal(tc.raw))
		})
	}
}

func TestMsgValidate(t *testing.T) {
	good := weavetest.NewAddress()
	cases := map[string]struct {
		msg     crowdfund.Msg
		wantErr *errors.Error
	}{
		"withdraw":         {msg: withdraw(good, good)},
		"donate":           {msg: donate(good, good, 0)},
		"missing campaign": {msg: donate(nil, good, 1), wantErr: errors.ErrInput},
		"missing creator":  {msg: withdraw(good, nil), wantErr: errors.ErrInput},
		"missing system": {
			msg:     &InitializeMsg{Campaign: good, Authority: good},
			wantErr: errors.ErrInput,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.IsErr(t, tc.wantErr, tc.msg.Validate())
		})
	}
}
