package middleware

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"folio/internal/models"
	"folio/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when Redis cannot be reached.
type FailPolicy int

const (
	// FailOpen lets the write through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

// Quota is how many writes one caller may make per fixed window.
type Quota struct {
	Name   string
	Limit  int
	Window time.Duration
	Policy FailPolicy
}

// Decision is the outcome of counting one write against a quota.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// rateLimitBypassed reports whether the current APP_ENV skips throttling.
func rateLimitBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return true
	}
	return false
}

func (q Quota) key(caller string) string {
	return fmt.Sprintf("rl:%s:%s", q.Name, caller)
}

// Take counts one write by caller. The window starts with the caller's first
// write and the counter expires with it.
func (q Quota) Take(ctx context.Context, rdb *redis.Client, caller string) (Decision, error) {
	if rdb == nil {
		return Decision{}, fmt.Errorf("redis client is nil")
	}

	key := q.key(caller)
	n, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		observability.RedisErrorRate.WithLabelValues("rate_limit").Inc()
		return Decision{}, err
	}
	if n == 1 {
		rdb.Expire(ctx, key, q.Window)
	}

	reset, err := rdb.PTTL(ctx, key).Result()
	if err != nil || reset <= 0 {
		reset = q.Window
	}

	return Decision{
		Allowed:   n <= int64(q.Limit),
		Remaining: max(q.Limit-int(n), 0),
		ResetIn:   reset,
	}, nil
}

type takeFunc func(ctx context.Context, caller string) (Decision, error)

// WriteLimit enforces q on mutating requests. Callers are keyed by user id
// when authenticated and by remote IP otherwise. Reads pass untouched.
func WriteLimit(rdb *redis.Client, q Quota) fiber.Handler {
	return writeLimitHandler(q, func(ctx context.Context, caller string) (Decision, error) {
		return q.Take(ctx, rdb, caller)
	})
}

func callerKey(c *fiber.Ctx) string {
	if actor := ActorFrom(c); actor.Authenticated() {
		return "user:" + strconv.FormatUint(uint64(actor.UserID), 10)
	}
	return "ip:" + c.IP()
}

func writeLimitHandler(q Quota, take takeFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		if rateLimitBypassed() {
			return c.Next()
		}

		d, err := take(c.UserContext(), callerKey(c))
		if err != nil {
			if q.Policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit fail-closed",
					"quota", q.Name, "path", c.Path(), "error", err)
				return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
					Error: "rate limit unavailable",
					Code:  models.CodeInternal,
				})
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(q.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			retry := int(d.ResetIn.Round(time.Second) / time.Second)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(max(retry, 1)))
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "rate limit exceeded",
				Code:  models.CodeRateLimited,
			})
		}
		return c.Next()
	}
}
