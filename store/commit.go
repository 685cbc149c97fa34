package store

import (
	"github.com/iov-one/crowdfund/errors"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// treeCacheSize is the number of iavl nodes kept in memory.
const treeCacheSize = 10000

// CommitStore manages an iavl committed state. Writes are staged by
// cache wraps and only reach the tree on Commit, which saves a new
// version. The app hash is the root hash of that version.
type CommitStore struct {
	db     dbm.DB
	tree   *iavl.MutableTree
	staged []Op
}

var _ CommitKVStore = (*CommitStore)(nil)
var _ ReadOnlyKVStore = (*CommitStore)(nil)

// NewCommitStore builds a versioned tree on an open database. Call
// LoadLatestVersion before use to pick up the state persisted by a
// previous run.
func NewCommitStore(db dbm.DB) *CommitStore {
	return &CommitStore{
		db:   db,
		tree: iavl.NewMutableTree(db, treeCacheSize),
	}
}

// NewMemCommitStore returns a commit store that keeps everything in
// memory.
func NewMemCommitStore() *CommitStore {
	return NewCommitStore(dbm.NewMemDB())
}

// NewLevelDBStore opens (or creates) a goleveldb database named name
// inside dir and loads its latest version.
func NewLevelDBStore(name, dir string) (*CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	s := NewCommitStore(db)
	if err := s.LoadLatestVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Get returns the value at the last committed state, nil if the key
// does not exist. Panics on nil key.
func (s *CommitStore) Get(key []byte) ([]byte, error) {
	if key == nil {
		panic("nil key")
	}
	_, val := s.tree.Get(key)
	return val, nil
}

// Has checks the last committed state. Panics on nil key.
func (s *CommitStore) Has(key []byte) (bool, error) {
	if key == nil {
		panic("nil key")
	}
	return s.tree.Has(key), nil
}

// CacheWrap returns a cache over the committed state. Writing it stages
// the operations for the next Commit.
func (s *CommitStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(s, &stagingBatch{store: s}, nil)
}

// Commit applies all staged operations to the tree and saves the next
// version.
func (s *CommitStore) Commit() (CommitID, error) {
	for _, op := range s.staged {
		if err := op.Apply(treeWriter{s.tree}); err != nil {
			return CommitID{}, err
		}
	}
	s.staged = nil

	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return CommitID{Version: version, Hash: hash}, nil
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s *CommitStore) LoadLatestVersion() error {
	s.staged = nil
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk.
func (s *CommitStore) LatestVersion() (CommitID, error) {
	return CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// Close releases the database handle.
func (s *CommitStore) Close() {
	s.db.Close()
}

// stagingBatch collects operations for the next commit.
type stagingBatch struct {
	store *CommitStore
	ops   []Op
}

var _ Batch = (*stagingBatch)(nil)

func (b *stagingBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

func (b *stagingBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(key))
	return nil
}

func (b *stagingBatch) Write() error {
	b.store.staged = append(b.store.staged, b.ops...)
	b.ops = nil
	return nil
}

// treeWriter adapts the iavl tree to SetDeleter.
type treeWriter struct {
	tree *iavl.MutableTree
}

func (w treeWriter) Set(key, value []byte) error {
	// iavl refuses nil values, empty ones are fine
	if value == nil {
		value = []byte{}
	}
	w.tree.Set(key, value)
	return nil
}

func (w treeWriter) Delete(key []byte) error {
	w.tree.Remove(key)
	return nil
}
