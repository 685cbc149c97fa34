package store

import "github.com/iov-one/crowdfund"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = crowdfund.ReadOnlyKVStore
type SetDeleter = crowdfund.SetDeleter
type KVStore = crowdfund.KVStore
type Batch = crowdfund.Batch
type CacheableKVStore = crowdfund.CacheableKVStore
type KVCacheWrap = crowdfund.KVCacheWrap
type CommitKVStore = crowdfund.CommitKVStore
type CommitID = crowdfund.CommitID
