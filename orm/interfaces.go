package orm

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/x"
)

// Object is a keyed value as a Bucket stores it. The bucket prefixes
// Key to build the database key and persists Value. Validate runs
// before every save.
type Object interface {
	Keyed
	Cloneable
	x.Validater
	Value() crowdfund.Persistent
}

// Keyed is anything that carries its primary key.
type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

// Cloneable returns an empty object of the same type, ready to be
// loaded from raw bytes.
type Cloneable interface {
	Clone() Object
}

// CloneableData is a model value. SimpleObj pairs it with a key to
// make an Object.
type CloneableData interface {
	x.Validater
	crowdfund.Persistent
	Copy() CloneableData
}
