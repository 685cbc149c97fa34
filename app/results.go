package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// ResultSet contains a list of keys or values returned by a query.
// Key and Value of an abci query response are both serialized result
// sets of the same size.
type ResultSet struct {
	Results [][]byte
}

var _ crowdfund.Persistent = (*ResultSet)(nil)

// Marshal encodes the set as a protobuf message with a single repeated
// bytes field.
func (r *ResultSet) Marshal() ([]byte, error) {
	raw, err := proto.Marshal(&resultSetPB{Results: r.Results})
	if err != nil {
		return nil, errors.Wrap(errors.ErrModel, err.Error())
	}
	return raw, nil
}

// Unmarshal decodes data produced by Marshal.
func (r *ResultSet) Unmarshal(raw []byte) error {
	var pb resultSetPB
	if err := proto.Unmarshal(raw, &pb); err != nil {
		return errors.Wrap(errors.ErrModel, err.Error())
	}
	r.Results = pb.Results
	return nil
}

// resultSetPB is the wire form of ResultSet.
type resultSetPB struct {
	Results [][]byte `protobuf:"bytes,1,rep,name=results,proto3" json:"results,omitempty"`
}

func (m *resultSetPB) Reset()         { *m = resultSetPB{} }
func (m *resultSetPB) String() string { return proto.CompactTextString(m) }
func (*resultSetPB) ProtoMessage()    {}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []crowdfund.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []crowdfund.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]crowdfund.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrap(errors.ErrState, "mismatched result set size")
	}
	mods := make([]crowdfund.Model, len(kref))
	for i := range mods {
		mods[i] = crowdfund.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}

// UnmarshalOneResult will parse a resultset, and
// it if is not empty, unmarshal the first result into o
func UnmarshalOneResult(bz []byte, o crowdfund.Persistent) error {
	// get the resultset
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return err
	}

	// no results, do nothing
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0])
}
