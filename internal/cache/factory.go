package cache

import (
	"errors"
	"strings"
)

const (
	EngineMemory = "memory"
	EngineSQLite = "sqlite"
	EngineRedis  = "redis"
)

// NewByEngine builds the configured cache engine. path is the database file
// for sqlite and the connection URL for redis; memory ignores it.
func NewByEngine(engine string, path string) (Cache, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineMemory:
		return NewMemoryCache(), nil
	case EngineSQLite:
		return NewSQLiteCache(path)
	case EngineRedis:
		return NewRedisCache(path)
	default:
		return nil, errors.New("unsupported cache engine: " + engine)
	}
}
