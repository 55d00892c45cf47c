package iocache

import (
	"sync"

	"github.com/solarlab/pvcompare/internal/contract"
)

// CacheStoreManager manages the response cache and run store instances.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	responses    contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetResponseStore returns the response CacheStore.
func (mgr *CacheStoreManager) GetResponseStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.responses
}

// GetRunStore returns the RunStore, or nil when run tracking is disabled.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
