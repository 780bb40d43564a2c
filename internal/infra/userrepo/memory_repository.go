package userrepo

import (
	"context"
	"strings"
	"sync"

	"github.com/agriconnect/agriconnect/internal/domain/auth"

	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory for tests and dev.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]auth.User
	identities map[string]auth.Identity
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]auth.User),
		identities: make(map[string]auth.Identity),
	}
}

// Create stores a new user, enforcing email and username uniqueness.
func (r *MemoryRepository) Create(_ context.Context, user auth.User) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, user.Email) {
			return auth.User{}, auth.ErrEmailExists
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return auth.User{}, auth.ErrUsernameExists
		}
	}
	r.byID[user.ID] = user
	return user, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.byID {
		if strings.EqualFold(user.Email, email) {
			return user, true, nil
		}
	}
	return auth.User{}, false, nil
}

func (r *MemoryRepository) GetByUsername(_ context.Context, username string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.byID {
		if strings.EqualFold(user.Username, username) {
			return user, true, nil
		}
	}
	return auth.User{}, false, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	return user, ok, nil
}

func (r *MemoryRepository) GetIdentity(_ context.Context, provider, providerSubject string) (auth.Identity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.identities[provider+"|"+providerSubject]
	return identity, ok, nil
}

func (r *MemoryRepository) UpsertIdentity(_ context.Context, identity auth.Identity) (auth.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := identity.Provider + "|" + identity.ProviderSubject
	if existing, ok := r.identities[key]; ok {
		existing.ProviderEmail = identity.ProviderEmail
		r.identities[key] = existing
		return existing, nil
	}
	if identity.ID == "" {
		identity.ID = uuid.NewString()
	}
	r.identities[key] = identity
	return identity, nil
}

var _ auth.Repository = (*MemoryRepository)(nil)
