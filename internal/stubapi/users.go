package stubapi

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/farmtrack/mobile-core/internal/model"
)

// seedUser pairs an API user record with its bcrypt password hash.
type seedUser struct {
	User model.User
	Hash string
}

// UserSet is the in-memory account table of the stub server.
type UserSet struct {
	mu    sync.RWMutex
	users map[string]seedUser // keyed by lowercased email
}

// NewUserSet seeds the default development accounts. Every account's
// password is "secret123".
func NewUserSet(bcryptCost int) (*UserSet, error) {
	now := time.Now().UTC()
	verified := now.Add(-24 * time.Hour)
	seeds := []model.User{
		{
			ID: 1, Name: "Amara Okafor", Email: "amara@greenvalley.farm",
			EmailVerifiedAt: &verified, FarmID: 1,
			Roles: []model.Role{{
				ID: 1, Name: "farm-admin", GuardName: "api",
				CreatedAt: now, UpdatedAt: now,
			}},
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: 2, Name: "Jonas Meyer", Email: "jonas@greenvalley.farm",
			FarmID: 1,
			Roles: []model.Role{{
				ID: 2, Name: "farm-worker", GuardName: "api",
				CreatedAt: now, UpdatedAt: now,
			}},
			CreatedAt: now, UpdatedAt: now,
		},
	}

	s := &UserSet{users: make(map[string]seedUser, len(seeds))}
	for _, u := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcryptCost)
		if err != nil {
			return nil, err
		}
		s.users[strings.ToLower(u.Email)] = seedUser{User: u, Hash: string(hash)}
	}
	return s, nil
}

// FindByEmail looks an account up by normalized email.
func (s *UserSet) FindByEmail(email string) (seedUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	return u, ok
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
