package login

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/realmd/internal/metrics"
	"github.com/udisondev/realmd/internal/srp"
)

// SessionManager хранит ключи сессий аккаунтов для reconnect.
// Thread-safe через sync.Map; каждая операция атомарна, последний Put выигрывает.
type SessionManager struct {
	sessions sync.Map // map[string]*SessionInfo
	count    atomic.Int64
}

// SessionInfo хранит информацию о сессии аккаунта.
// Key и CreatedAt не меняются после Put.
type SessionInfo struct {
	Key       srp.SessionKey
	CreatedAt time.Time
	lastSeen  atomic.Int64 // unix nano
}

// LastSeen returns the time of the last Put or Touch.
func (i *SessionInfo) LastSeen() time.Time {
	return time.Unix(0, i.lastSeen.Load())
}

func newSessionInfo(key srp.SessionKey, now time.Time) *SessionInfo {
	info := &SessionInfo{Key: key, CreatedAt: now}
	info.lastSeen.Store(now.UnixNano())
	return info
}

// NewSessionManager создаёт новый SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// Put сохраняет ключ для аккаунта, заменяя предыдущую сессию.
func (sm *SessionManager) Put(account string, key srp.SessionKey) {
	sm.putInfo(account, newSessionInfo(key, time.Now()))
}

func (sm *SessionManager) putInfo(account string, info *SessionInfo) {
	if _, loaded := sm.sessions.Swap(account, info); !loaded {
		metrics.ActiveSessions.Set(float64(sm.count.Add(1)))
	}
}

// Get возвращает ключ сессии аккаунта.
func (sm *SessionManager) Get(account string) (srp.SessionKey, bool) {
	val, ok := sm.sessions.Load(account)
	if !ok {
		return srp.SessionKey{}, false
	}
	return val.(*SessionInfo).Key, true
}

// Touch обновляет last-seen. Возвращает false, если сессии нет.
func (sm *SessionManager) Touch(account string) bool {
	val, ok := sm.sessions.Load(account)
	if !ok {
		return false
	}
	val.(*SessionInfo).lastSeen.Store(time.Now().UnixNano())
	return true
}

// Remove удаляет сессию для аккаунта.
func (sm *SessionManager) Remove(account string) {
	if _, loaded := sm.sessions.LoadAndDelete(account); loaded {
		metrics.ActiveSessions.Set(float64(sm.count.Add(-1)))
	}
}

// CleanExpired удаляет сессии, не использовавшиеся дольше ttl.
// Возвращает количество удалённых.
func (sm *SessionManager) CleanExpired(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl).UnixNano()
	removed := 0
	sm.sessions.Range(func(key, value any) bool {
		info := value.(*SessionInfo)
		if info.lastSeen.Load() >= cutoff {
			return true
		}
		// CompareAndDelete: сессию могли перезаписать, пока мы итерировались
		if sm.sessions.CompareAndDelete(key, value) {
			removed++
			metrics.ActiveSessions.Set(float64(sm.count.Add(-1)))
		}
		return true
	})
	return removed
}

// Count возвращает количество активных сессий.
func (sm *SessionManager) Count() int {
	return int(sm.count.Load())
}
