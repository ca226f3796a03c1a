package store

import (
	"context"
	"errors"
)

// Logical entry names, shared with the mobile client.
const (
	KeyUserData          = "userData"
	KeyActiveObjectives  = "objectives"
	KeyPassiveObjectives = "passiveObjectives"
	KeyActiveDailyLog    = "activeObjectiveDailyLog"
	KeyPassiveDailyLog   = "passiveObjectiveDailyLog"
)

var ErrKeyNotFound = errors.New("store: key not found")

var _ KVStore = (*RedisStore)(nil)
var _ KVStore = (*MemoryStore)(nil)

// KVStore is a durable, string-keyed blob store. All values are JSON.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
