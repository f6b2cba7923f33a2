package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/biterush/campusgrub/internal/redisx"
)

// Persister is the storage adapter behind a Store: a JSON-serialized line
// list plus a plain location string, keyed by session.
type Persister interface {
	Load(ctx context.Context, sessionID string) (lines []Line, location string, err error)
	Save(ctx context.Context, sessionID string, lines []Line, location string) error
}

type RedisPersister struct {
	RDB *redis.Client
}

func (p *RedisPersister) Load(ctx context.Context, sessionID string) ([]Line, string, error) {
	var lines []Line
	raw, err := p.RDB.Get(ctx, fmt.Sprintf(redisx.KeyCartLines, sessionID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// no cart yet
	case err != nil:
		return nil, "", err
	default:
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			// corrupt snapshot: log, drop it, start empty
			log.Printf("cart snapshot corrupt for session %s, resetting: %v", sessionID, err)
			_ = p.RDB.Del(ctx, fmt.Sprintf(redisx.KeyCartLines, sessionID)).Err()
			lines = nil
		}
	}

	loc, err := p.RDB.Get(ctx, fmt.Sprintf(redisx.KeyCartLocation, sessionID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, "", err
	}
	return lines, loc, nil
}

func (p *RedisPersister) Save(ctx context.Context, sessionID string, lines []Line, location string) error {
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	if err := p.RDB.Set(ctx, fmt.Sprintf(redisx.KeyCartLines, sessionID), b, redisx.TTLCart).Err(); err != nil {
		return err
	}
	locKey := fmt.Sprintf(redisx.KeyCartLocation, sessionID)
	if location == "" {
		return p.RDB.Del(ctx, locKey).Err()
	}
	return p.RDB.Set(ctx, locKey, location, redisx.TTLCart).Err()
}

// MemoryPersister backs tests and single-process runs.
type MemoryPersister struct {
	mu   sync.Mutex
	data map[string]memEntry
}

type memEntry struct {
	lines    []byte
	location string
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{data: map[string]memEntry{}}
}

func (p *MemoryPersister) Load(_ context.Context, sessionID string) ([]Line, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.data[sessionID]
	if !ok {
		return nil, "", nil
	}
	var lines []Line
	if len(e.lines) > 0 {
		if err := json.Unmarshal(e.lines, &lines); err != nil {
			log.Printf("cart snapshot corrupt for session %s, resetting: %v", sessionID, err)
			delete(p.data, sessionID)
			return nil, "", nil
		}
	}
	return lines, e.location, nil
}

func (p *MemoryPersister) Save(_ context.Context, sessionID string, lines []Line, location string) error {
	b, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.data[sessionID] = memEntry{lines: b, location: location}
	p.mu.Unlock()
	return nil
}

// Corrupt overwrites the stored line list with junk. Test hook for the
// malformed-snapshot path.
func (p *MemoryPersister) Corrupt(sessionID string) {
	p.mu.Lock()
	e := p.data[sessionID]
	e.lines = []byte("{not json")
	p.data[sessionID] = e
	p.mu.Unlock()
}
