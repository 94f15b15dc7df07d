package store

import (
	"context"
	"fmt"
)

// Options selects and configures a backend.
type Options struct {
	Backend string // file, redis or memory
	Dir     string
	Redis   RedisOptions
}

// Open returns the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "file":
		fs, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case "redis":
		rs, err := NewRedisStore(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
