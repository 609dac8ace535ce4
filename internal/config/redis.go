package config

// Redis backs console sessions, stored preferences and the login rate
// limiter.  When the server cannot be reached at startup the constructor
// returns nil and callers fall back to in-memory stores with rate limiting
// disabled.

import (
    "context"
    "crypto/tls"
    "log"
    "os"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// RedisConfig holds connection parameters read from the environment.
type RedisConfig struct {
    Addr     string // host:port
    Password string // optional
    DB       int    // database number
    TLS      bool   // dial with TLS
}

// LoadRedisConfig reads REDIS_HOST/REDIS_PORT (or REDIS_ADDR), REDIS_PASSWORD,
// REDIS_DB and REDIS_TLS.  Host and port win over REDIS_ADDR.
func LoadRedisConfig() RedisConfig {
    addr := envStr("REDIS_ADDR", "localhost:6379")
    host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")
    if host != "" && port != "" {
        addr = host + ":" + port
    }
    return RedisConfig{
        Addr:     addr,
        Password: os.Getenv("REDIS_PASSWORD"),
        DB:       envInt("REDIS_DB", 0),
        TLS:      envBool("REDIS_TLS", false),
    }
}

// NewRedisClient dials Redis and pings it with a short timeout.  The
// returned client is nil when the ping fails.
func NewRedisClient(rc RedisConfig) *redis.Client {
    var tlsConf *tls.Config
    if rc.TLS {
        tlsConf = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: strings.Split(rc.Addr, ":")[0]}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      rc.Addr,
        Password:  rc.Password,
        DB:        rc.DB,
        TLSConfig: tlsConf,
    })
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        log.Printf("redis: %s unreachable: %v", rc.Addr, err)
        _ = client.Close()
        return nil
    }
    return client
}
