// Package iocache persists the parsed history cache and the walk journal.
package iocache

import (
	"sync"

	"github.com/huangsam/gitwalk/internal/contract"
)

// CacheStoreManager manages the log cache and the walk journal.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	log          contract.CacheStore
	journal      contract.JournalStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetLogStore returns the history CacheStore, or nil when caching is not initialized.
func (mgr *CacheStoreManager) GetLogStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.log
}

// GetJournalStore returns the JournalStore, or nil when journaling is not initialized.
func (mgr *CacheStoreManager) GetJournalStore() contract.JournalStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.journal
}
