package middleware

import (
    "log"
    "math"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/directory-admin/internal/config"
)

// TooManyAttempts is the text answered once the login bucket is empty.
const TooManyAttempts = "Too many login attempts"

// loginBucket refills whole intervals since the last refill, takes one
// token if any is left and returns {allowed, remaining, retry_after_ms}.
var loginBucket = redis.NewScript(`
local key = KEYS[1]
local now, cap, refill, every, ttl = tonumber(ARGV[1]), tonumber(ARGV[2]), tonumber(ARGV[3]), tonumber(ARGV[4]), tonumber(ARGV[5])

local st = redis.call('HMGET', key, 'tokens', 'at')
local tokens, at = tonumber(st[1]), tonumber(st[2])
if tokens == nil or at == nil then
    tokens, at = cap, now
end

local steps = math.floor(math.max(0, now - at) / every)
if steps > 0 then
    tokens = math.min(cap, tokens + steps * refill)
    at = at + steps * every
end

local wait = 0
if tokens > 0 then
    tokens = tokens - 1
else
    wait = math.max(0, every - (now - at))
end

redis.call('HSET', key, 'tokens', tokens, 'at', at)
redis.call('EXPIRE', key, ttl)
if wait > 0 then return {0, tokens, wait} end
return {1, tokens, 0}
`)

// bucketResult is the decoded script answer.
type bucketResult struct {
    allowed   bool
    remaining int64
    retry     time.Duration
}

func decodeBucket(v any) (bucketResult, bool) {
    arr, ok := v.([]any)
    if !ok || len(arr) != 3 {
        return bucketResult{}, false
    }
    n := make([]int64, 3)
    for i, x := range arr {
        switch t := x.(type) {
        case int64:
            n[i] = t
        case string:
            n[i], _ = strconv.ParseInt(t, 10, 64)
        default:
            return bucketResult{}, false
        }
    }
    return bucketResult{allowed: n[0] == 1, remaining: n[1], retry: time.Duration(n[2]) * time.Millisecond}, true
}

// NewTokenBucket throttles login attempts with a Redis token bucket.  With
// limiting disabled or no Redis client every request passes; a Redis error
// also lets the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            key := buildRateKey(cfg, c)
            res, err := loginBucket.Run(c.Request().Context(), rdb, []string{key},
                time.Now().UnixMilli(),
                cfg.Capacity,
                cfg.RefillTokens,
                cfg.RefillInterval.Milliseconds(),
                int64(cfg.TTL/time.Second),
            ).Result()
            if err != nil {
                log.Printf("ratelimit: key=%s redis error: %v", key, err)
                return next(c)
            }
            b, ok := decodeBucket(res)
            if !ok {
                log.Printf("ratelimit: key=%s unexpected script result %#v", key, res)
                return next(c)
            }
            return answerBucket(c, cfg, key, b, next)
        }
    }
}

// answerBucket sets the limit headers and either continues or answers 429.
func answerBucket(c echo.Context, cfg config.RateLimitConfig, key string, b bucketResult, next echo.HandlerFunc) error {
    h := c.Response().Header()
    h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
    h.Set("X-RateLimit-Remaining", strconv.FormatInt(b.remaining, 10))
    if b.allowed {
        return next(c)
    }
    secs := int(math.Ceil(b.retry.Seconds()))
    h.Set("Retry-After", strconv.Itoa(secs))
    if cfg.Debug {
        log.Printf("ratelimit: blocked key=%s retry=%s", key, b.retry)
    }
    return c.JSON(http.StatusTooManyRequests, echo.Map{"error": TooManyAttempts, "retry_after": secs})
}

// buildRateKey keys the bucket by client ip, by the login identity, or by
// both (the default).
func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    parts := []string{cfg.Prefix}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, "ip", ip)
    case "user":
        parts = append(parts, "user", userID(c))
    default:
        parts = append(parts, "ip", ip, "user", userID(c))
    }
    return strings.Join(parts, ":")
}
