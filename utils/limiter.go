package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// readCounter returns the integer at key, or 0 when it is missing. Redis errors are logged
// and read as 0, so limits fail open while redis is down.
func readCounter(ctx context.Context, rdb *redis.Client, key, msg string) int {
	cnt, err := rdb.Get(ctx, key).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		LogError(err, msg)
	}
	return cnt
}

// CanSendVerification allows one mail per minute and at most 10 per hour for a key.
func CanSendVerification(ctx context.Context, rdb *redis.Client, key string) (bool, string) {
	minuteKey := fmt.Sprintf("verify_minute_%s", key)
	hourKey := fmt.Sprintf("verify_hour_%s", key)
	exists, err := rdb.Exists(ctx, minuteKey).Result()
	if err != nil {
		LogError(err, "verification limiter")
	}
	if exists > 0 {
		return false, "verification email can be sent at most once per 60 seconds"
	}
	if readCounter(ctx, rdb, hourKey, "verification limiter") >= 10 {
		return false, "verification email can be sent at most 10 times per hour"
	}
	return true, ""
}

func MarkVerificationSent(ctx context.Context, rdb *redis.Client, key string) {
	minuteKey := fmt.Sprintf("verify_minute_%s", key)
	hourKey := fmt.Sprintf("verify_hour_%s", key)
	pipe := rdb.TxPipeline()
	pipe.Set(ctx, minuteKey, 1, 60*time.Second)
	pipe.Incr(ctx, hourKey)
	pipe.Expire(ctx, hourKey, time.Hour)
	_, _ = pipe.Exec(ctx)
}

const (
	loginFailureLimit  = 10
	loginFailureWindow = 15 * time.Minute
)

func loginKey(key string) string {
	return "login_failures_" + key
}

// LoginBlocked reports whether too many failed logins were recorded for key.
func LoginBlocked(ctx context.Context, rdb *redis.Client, key string) bool {
	return readCounter(ctx, rdb, loginKey(key), "login limiter") >= loginFailureLimit
}

func MarkLoginFailure(ctx context.Context, rdb *redis.Client, key string) {
	pipe := rdb.TxPipeline()
	pipe.Incr(ctx, loginKey(key))
	pipe.Expire(ctx, loginKey(key), loginFailureWindow)
	_, _ = pipe.Exec(ctx)
}

func ResetLoginFailures(ctx context.Context, rdb *redis.Client, key string) {
	rdb.Del(ctx, loginKey(key))
}
