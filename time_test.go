package crowdfund

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/weavetest/assert"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw      string
		wantTime UnixTime
		wantErr  *errors.Error
	}{
		"zero time as number": {
			raw:      "0",
			wantTime: 0,
		},
		"zero time as string": {
			raw:      `"1970-01-01T01:00:00+01:00"`,
			wantTime: 0,
		},
		"a time as string": {
			raw:      `"2019-04-04T11:35:40.89181085+02:00"`,
			wantTime: 1554370540,
		},
		"a time as number": {
			raw:      "1554370540",
			wantTime: 1554370540,
		},
		"negative number": {
			raw:      "-1",
			wantTime: -1,
		},
		"negative time as string": {
			raw:      `"1969-12-31T23:59:00Z"`,
			wantTime: -60,
		},
		"invalid format": {
			raw:     `"yesterday"`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			assert.IsErr(t, tc.wantErr, err)
			assert.Equal(t, tc.wantTime, got)
		})
	}
}

func TestUnixTimeConversion(t *testing.T) {
	now := time.Unix(1554370540, 900)
	ut := AsUnixTime(now)
	assert.Equal(t, UnixTime(1554370540), ut)
	assert.Equal(t, int64(1554370540), ut.Time().Unix())
	assert.Equal(t, UnixTime(1554370540+90), ut.Add(90*time.Second))
	assert.Equal(t, true, UnixTime(0).IsZero())
	assert.Equal(t, "2019-04-04 09:35:40 +0000 UTC", ut.String())
}
