package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	BookKeyPrefix = "book:%d"
)

const (
	BookTTL = 10 * time.Minute
)

func BookKey(bookID uint) string {
	return fmt.Sprintf(BookKeyPrefix, bookID)
}

// Invalidate removes key. Failures are counted by the client hook and
// otherwise ignored; the entry expires on its TTL.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}
