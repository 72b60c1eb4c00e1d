package iocache

import (
	"time"

	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetLogStore implements the CacheManager interface.
func (m *MockCacheManager) GetLogStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetJournalStore implements the CacheManager interface.
func (m *MockCacheManager) GetJournalStore() contract.JournalStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.JournalStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockJournalStore is a mock implementation of JournalStore for testing.
type MockJournalStore struct {
	mock.Mock
}

var _ contract.JournalStore = &MockJournalStore{} // Compile-time check

// BeginWalk implements the JournalStore interface.
func (m *MockJournalStore) BeginWalk(startTime time.Time, repoPath string, params map[string]any) (int64, error) {
	args := m.Called(startTime, repoPath, params)
	return args.Get(0).(int64), args.Error(1)
}

// RecordVisit implements the JournalStore interface.
func (m *MockJournalStore) RecordVisit(record schema.CommitVisitRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

// EndWalk implements the JournalStore interface.
func (m *MockJournalStore) EndWalk(walkID int64, endTime time.Time, summary schema.WalkSummary) error {
	args := m.Called(walkID, endTime, summary)
	return args.Error(0)
}

// GetAllWalkRuns implements the JournalStore interface.
func (m *MockJournalStore) GetAllWalkRuns() ([]schema.WalkRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.WalkRunRecord)
	return runs, args.Error(1)
}

// GetAllCommitVisits implements the JournalStore interface.
func (m *MockJournalStore) GetAllCommitVisits() ([]schema.CommitVisitRecord, error) {
	args := m.Called()
	visits, _ := args.Get(0).([]schema.CommitVisitRecord)
	return visits, args.Error(1)
}

// GetStatus implements the JournalStore interface.
func (m *MockJournalStore) GetStatus() (schema.JournalStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.JournalStatus), args.Error(1)
}

// Close implements the JournalStore interface.
func (m *MockJournalStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
