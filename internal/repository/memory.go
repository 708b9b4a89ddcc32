package repository

import (
	"context"
	"sync"
	"time"

	"authflow/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MemoryUserRepository is a map-backed UserRepository with the same
// nil-on-not-found convention as the postgres implementation. Writes to a
// single user are serialized by the mutex, matching the single-document
// atomicity the service assumes of the real store.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*entity.User
	byEmail map[string]uuid.UUID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[uuid.UUID]*entity.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return gorm.ErrDuplicatedKey
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.users[user.ID] = &stored
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	copied := *r.users[id]
	return &copied, nil
}

func (r *MemoryUserRepository) FindByVerificationCode(_ context.Context, code string, now time.Time) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.VerificationCode != nil && *user.VerificationCode == code &&
			user.VerificationExpiresAt != nil && user.VerificationExpiresAt.After(now) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) FindByResetToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.ResetToken != nil && *user.ResetToken == token &&
			user.ResetExpiresAt != nil && user.ResetExpiresAt.After(now) {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

// Count reports the number of stored users.
func (r *MemoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// MemoryAuditLogRepository collects audit entries in order.
type MemoryAuditLogRepository struct {
	mu      sync.Mutex
	entries []entity.AuditLog
}

func NewMemoryAuditLogRepository() *MemoryAuditLogRepository {
	return &MemoryAuditLogRepository{}
}

func (r *MemoryAuditLogRepository) Log(_ context.Context, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now()
	r.entries = append(r.entries, *log)
	return nil
}

// Entries returns a copy of the recorded entries.
func (r *MemoryAuditLogRepository) Entries() []entity.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.AuditLog, len(r.entries))
	copy(out, r.entries)
	return out
}
