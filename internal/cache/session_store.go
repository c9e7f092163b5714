package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EmailSession 邮箱验证会话
// 令牌出示成功后创建，用于后续设置密码
type EmailSession struct {
	Email     string    `json:"email"`
	Flow      string    `json:"flow"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSession 登录会话
type UserSession struct {
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore 会话存储接口
// 会话以不透明 ID 为键，由服务端持有，过期自动失效
type SessionStore interface {
	PutEmailSession(ctx context.Context, session EmailSession, ttl time.Duration) (string, error)
	GetEmailSession(ctx context.Context, id string) (*EmailSession, error)
	DelEmailSession(ctx context.Context, id string) error

	PutUserSession(ctx context.Context, session UserSession, ttl time.Duration) (string, error)
	GetUserSession(ctx context.Context, id string) (*UserSession, error)
	DelUserSession(ctx context.Context, id string) error
}

// NewSessionID 生成不透明会话 ID
func NewSessionID() string {
	return uuid.NewString()
}

func emailSessionKey(id string) string {
	return fmt.Sprintf("session:email:%s", id)
}

func userSessionKey(id string) string {
	return fmt.Sprintf("session:user:%s", id)
}

// RedisSessionStore 基于 Redis 的会话存储
type RedisSessionStore struct{}

// NewRedisSessionStore 创建 Redis 会话存储
func NewRedisSessionStore() *RedisSessionStore {
	return &RedisSessionStore{}
}

// PutEmailSession 写入邮箱会话
func (s *RedisSessionStore) PutEmailSession(ctx context.Context, session EmailSession, ttl time.Duration) (string, error) {
	id := NewSessionID()
	if err := SetJSON(ctx, emailSessionKey(id), session, ttl); err != nil {
		return "", err
	}
	return id, nil
}

// GetEmailSession 读取邮箱会话，不存在或已过期返回 nil
func (s *RedisSessionStore) GetEmailSession(ctx context.Context, id string) (*EmailSession, error) {
	if id == "" {
		return nil, nil
	}
	var session EmailSession
	hit, err := GetJSON(ctx, emailSessionKey(id), &session)
	if err != nil || !hit {
		return nil, err
	}
	return &session, nil
}

// DelEmailSession 删除邮箱会话
func (s *RedisSessionStore) DelEmailSession(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return Del(ctx, emailSessionKey(id))
}

// PutUserSession 写入登录会话
func (s *RedisSessionStore) PutUserSession(ctx context.Context, session UserSession, ttl time.Duration) (string, error) {
	id := NewSessionID()
	if err := SetJSON(ctx, userSessionKey(id), session, ttl); err != nil {
		return "", err
	}
	return id, nil
}

// GetUserSession 读取登录会话，不存在或已过期返回 nil
func (s *RedisSessionStore) GetUserSession(ctx context.Context, id string) (*UserSession, error) {
	if id == "" {
		return nil, nil
	}
	var session UserSession
	hit, err := GetJSON(ctx, userSessionKey(id), &session)
	if err != nil || !hit {
		return nil, err
	}
	return &session, nil
}

// DelUserSession 删除登录会话
func (s *RedisSessionStore) DelUserSession(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return Del(ctx, userSessionKey(id))
}

type memoryEntry struct {
	payload   interface{}
	expiresAt time.Time
}

// MemorySessionStore 进程内会话存储
// 未启用 Redis 时的降级实现，也用于测试
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessionStore 创建进程内会话存储
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemorySessionStore) put(key string, payload interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{payload: payload, expiresAt: s.now().Add(ttl)}
}

func (s *MemorySessionStore) get(key string) (interface{}, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}
	return entry.payload, true
}

func (s *MemorySessionStore) del(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// PutEmailSession 写入邮箱会话
func (s *MemorySessionStore) PutEmailSession(ctx context.Context, session EmailSession, ttl time.Duration) (string, error) {
	id := NewSessionID()
	s.put(emailSessionKey(id), session, ttl)
	return id, nil
}

// GetEmailSession 读取邮箱会话，不存在或已过期返回 nil
func (s *MemorySessionStore) GetEmailSession(ctx context.Context, id string) (*EmailSession, error) {
	if id == "" {
		return nil, nil
	}
	payload, ok := s.get(emailSessionKey(id))
	if !ok {
		return nil, nil
	}
	session, ok := payload.(EmailSession)
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// DelEmailSession 删除邮箱会话
func (s *MemorySessionStore) DelEmailSession(ctx context.Context, id string) error {
	s.del(emailSessionKey(id))
	return nil
}

// PutUserSession 写入登录会话
func (s *MemorySessionStore) PutUserSession(ctx context.Context, session UserSession, ttl time.Duration) (string, error) {
	id := NewSessionID()
	s.put(userSessionKey(id), session, ttl)
	return id, nil
}

// GetUserSession 读取登录会话，不存在或已过期返回 nil
func (s *MemorySessionStore) GetUserSession(ctx context.Context, id string) (*UserSession, error) {
	if id == "" {
		return nil, nil
	}
	payload, ok := s.get(userSessionKey(id))
	if !ok {
		return nil, nil
	}
	session, ok := payload.(UserSession)
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// DelUserSession 删除登录会话
func (s *MemorySessionStore) DelUserSession(ctx context.Context, id string) error {
	s.del(userSessionKey(id))
	return nil
}

// NewSessionStore 按缓存开关选择会话存储实现
func NewSessionStore() SessionStore {
	if Enabled() {
		return NewRedisSessionStore()
	}
	return NewMemorySessionStore()
}
