package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/user/cinerec/internal/metrics"
)

// entry 包装控制器，增加过期时间
type entry struct {
	ctrl      *Controller
	expiredAt time.Time
}

// Store 浏览器会话存储：LRU 限制数量，TTL 限制空闲时间
type Store struct {
	mu      sync.Mutex
	storage *lru.Cache[string, entry]
	ttl     time.Duration
	factory func() *Controller
	now     func() time.Time
}

// NewStore size 是最大会话数，ttl 是空闲有效期（每次访问顺延）
func NewStore(size int, ttl time.Duration, factory func() *Controller) (*Store, error) {
	// 被淘汰或删除的会话同时登出，丢弃其进行中的请求
	c, err := lru.NewWithEvict[string, entry](size, func(_ string, e entry) {
		metrics.ActiveSessions.Dec()
		e.ctrl.Logout()
	})
	if err != nil {
		return nil, err
	}
	return &Store{storage: c, ttl: ttl, factory: factory, now: time.Now}, nil
}

// Create 新建会话，返回会话 key
func (s *Store) Create() (string, *Controller) {
	key := uuid.NewString()
	ctrl := s.factory()

	s.mu.Lock()
	s.storage.Add(key, entry{ctrl: ctrl, expiredAt: s.now().Add(s.ttl)})
	s.mu.Unlock()

	metrics.ActiveSessions.Inc()
	return key, ctrl
}

// Get 获取会话（带过期检查），命中时顺延有效期
func (s *Store) Get(key string) (*Controller, bool) {
	if key == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.storage.Get(key)
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiredAt) {
		s.storage.Remove(key)
		return nil, false
	}
	e.expiredAt = s.now().Add(s.ttl)
	s.storage.Add(key, e)
	return e.ctrl, true
}

// Delete 删除会话
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.Remove(key)
}

// Sweep 删除所有已过期会话，返回删除数量
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for _, key := range s.storage.Keys() {
		e, ok := s.storage.Peek(key)
		if ok && now.After(e.expiredAt) {
			s.storage.Remove(key)
			removed++
		}
	}
	return removed
}

// Len 当前会话数
func (s *Store) Len() int {
	return s.storage.Len()
}

// Purge 清空所有会话
func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage.Purge()
}
