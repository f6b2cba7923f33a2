package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/biterush/campusgrub/internal/redisx"
)

// SessionStore keeps the logged-in user's profile under an opaque id.
//
// This is the server-side stand-in for the storefront's plaintext
// localStorage session: still an unsigned demo session, deliberately not a
// production auth token.
type SessionStore struct {
	RDB *redis.Client
}

var ErrNoSession = errors.New("session not found")

func (s *SessionStore) Create(ctx context.Context, p Profile) (string, error) {
	id := uuid.NewString()
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf(redisx.KeySession, id)
	if err := s.RDB.Set(ctx, key, b, redisx.TTLSession).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (Profile, error) {
	raw, err := s.RDB.Get(ctx, fmt.Sprintf(redisx.KeySession, id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Profile{}, ErrNoSession
		}
		return Profile{}, err
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, ErrNoSession
	}
	p.Role = ParseRole(string(p.Role))
	return p, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.RDB.Del(ctx, fmt.Sprintf(redisx.KeySession, id)).Err()
}
