package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/udisondev/realmd/internal/model"
	"github.com/udisondev/realmd/internal/srp"
)

// MockAccountStore — in-memory account store для unit тестов.
// Func-поля перекрывают поведение по умолчанию.
type MockAccountStore struct {
	FindAccountFunc     func(ctx context.Context, username string) (*model.Account, error)
	RecordSessionFunc   func(ctx context.Context, username string, key srp.SessionKey) error
	FindSessionFunc     func(ctx context.Context, username string, maxAge time.Duration) (srp.SessionKey, bool, error)
	CharacterCountsFunc func(ctx context.Context, accountID int64) (map[uint8]uint8, error)

	mu       sync.RWMutex
	accounts map[string]*model.Account
	sessions map[string]srp.SessionKey
	recorded map[string]time.Time
}

// NewMockAccountStore создаёт пустой MockAccountStore.
func NewMockAccountStore() *MockAccountStore {
	return &MockAccountStore{
		accounts: make(map[string]*model.Account),
		sessions: make(map[string]srp.SessionKey),
		recorded: make(map[string]time.Time),
	}
}

// Add сохраняет аккаунт.
func (m *MockAccountStore) Add(acc *model.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[acc.Username] = acc
}

// FindAccount возвращает копию аккаунта или nil, nil.
func (m *MockAccountStore) FindAccount(ctx context.Context, username string) (*model.Account, error) {
	if m.FindAccountFunc != nil {
		return m.FindAccountFunc(ctx, username)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, ok := m.accounts[username]
	if !ok {
		return nil, nil
	}
	cp := *acc
	return &cp, nil
}

// RecordSession запоминает последний ключ аккаунта.
func (m *MockAccountStore) RecordSession(ctx context.Context, username string, key srp.SessionKey) error {
	if m.RecordSessionFunc != nil {
		return m.RecordSessionFunc(ctx, username, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[username] = key
	m.recorded[username] = time.Now()
	return nil
}

// AgeSession сдвигает время записи ключа в прошлое на d.
func (m *MockAccountStore) AgeSession(username string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded[username] = m.recorded[username].Add(-d)
}

// Session возвращает ключ, записанный через RecordSession.
func (m *MockAccountStore) Session(username string) (srp.SessionKey, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.sessions[username]
	return key, ok
}

// PersistentMockStore adds SessionFinder and CharacterCounter on top of
// MockAccountStore, like the PostgreSQL store.
type PersistentMockStore struct {
	*MockAccountStore
	Characters map[uint8]uint8

	lastIP sync.Map // username -> ip
}

// NewPersistentMockStore создаёт store с поддержкой reconnect после рестарта.
func NewPersistentMockStore() *PersistentMockStore {
	return &PersistentMockStore{MockAccountStore: NewMockAccountStore()}
}

// FindSession возвращает ключ, записанный через RecordSession не раньше maxAge назад.
func (m *PersistentMockStore) FindSession(ctx context.Context, username string, maxAge time.Duration) (srp.SessionKey, bool, error) {
	if m.FindSessionFunc != nil {
		return m.FindSessionFunc(ctx, username, maxAge)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	key, ok := m.sessions[username]
	if !ok {
		return srp.SessionKey{}, false, nil
	}
	if maxAge > 0 && time.Since(m.recorded[username]) > maxAge {
		return srp.SessionKey{}, false, nil
	}
	return key, true, nil
}

// CharacterCounts возвращает Characters для любого аккаунта.
func (m *PersistentMockStore) CharacterCounts(ctx context.Context, accountID int64) (map[uint8]uint8, error) {
	if m.CharacterCountsFunc != nil {
		return m.CharacterCountsFunc(ctx, accountID)
	}
	return m.Characters, nil
}

// RecordLogin запоминает IP последнего входа.
func (m *PersistentMockStore) RecordLogin(ctx context.Context, username, ip string) error {
	m.lastIP.Store(username, ip)
	return nil
}

// LastIP возвращает IP, записанный через RecordLogin.
func (m *PersistentMockStore) LastIP(username string) string {
	ip, _ := m.lastIP.Load(username)
	s, _ := ip.(string)
	return s
}

// MockRealmSource — realm source с управляемым результатом.
type MockRealmSource struct {
	ListRealmsFunc func(ctx context.Context) ([]model.Realm, error)

	mu     sync.Mutex
	calls  int
	realms []model.Realm
}

// NewMockRealmSource создаёт source, всегда возвращающий realms.
func NewMockRealmSource(realms ...model.Realm) *MockRealmSource {
	return &MockRealmSource{realms: realms}
}

// ListRealms возвращает realms или результат ListRealmsFunc.
func (m *MockRealmSource) ListRealms(ctx context.Context) ([]model.Realm, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.ListRealmsFunc != nil {
		return m.ListRealmsFunc(ctx)
	}
	return append([]model.Realm(nil), m.realms...), nil
}

// Calls возвращает количество вызовов ListRealms.
func (m *MockRealmSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// StaticRealms implements Snapshot() over a fixed list.
type StaticRealms []model.Realm

// Snapshot возвращает список как есть.
func (s StaticRealms) Snapshot() []model.Realm {
	return s
}
