package storage

import (
	"context"
)

type ObjectStore interface {
	// Fetch makes the object stored under key available as a local file and
	// returns its path. cleanup releases any temporary copy and is never nil
	// when err is nil.
	Fetch(ctx context.Context, key string) (path string, cleanup func(), err error)
}
