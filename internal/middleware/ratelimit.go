package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/iliyamo/skycomfort-server/internal/config"
	"github.com/iliyamo/skycomfort-server/internal/utils"
)

var limiterScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local refill_tokens = tonumber(ARGV[3])
local interval_ms = tonumber(ARGV[4])
local ttl_seconds = tonumber(ARGV[5])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])
if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now_ms
end

if interval_ms > 0 and refill_tokens > 0 then
	local intervals = math.floor(math.max(0, now_ms - last_refill) / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals * refill_tokens)
		last_refill = last_refill + intervals * interval_ms
	end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
	allowed = 1
	tokens = tokens - 1
else
	retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)
return { allowed, tokens, retry_after_ms }
`)

// NewTokenBucket limits requests per key (see buildRateKey). With a redis
// client the bucket is shared across instances; without one each process
// keeps its own buckets.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, log *zap.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return passThrough
	}
	if rdb == nil {
		return NewLocalLimiter(cfg)
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key},
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				int64(cfg.TTL/time.Second),
			).Int64Slice()
			if err != nil || len(vals) != 3 {
				// Fail open.
				log.Warn("rate limit script failed", zap.String("key", key), zap.Error(err))
				return next(c)
			}
			allowed, remaining, retryMs := vals[0] == 1, vals[1], vals[2]

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			if !allowed {
				if cfg.Debug {
					log.Info("rate limited", zap.String("key", key), zap.Int64("retry_ms", retryMs))
				}
				return tooManyRequests(c, time.Duration(retryMs)*time.Millisecond)
			}
			return next(c)
		}
	}
}

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// localLimiter keeps one x/time/rate limiter per key and forgets keys idle
// for longer than the configured TTL.
type localLimiter struct {
	cfg       config.RateLimitConfig
	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

// NewLocalLimiter is the in-process token bucket.
func NewLocalLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	l := &localLimiter{cfg: cfg, visitors: make(map[string]*visitor), now: time.Now}
	return l.middleware
}

func (l *localLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		lim := l.get(buildRateKey(l.cfg, c))
		r := lim.Reserve()
		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			return tooManyRequests(c, delay)
		}
		c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(l.cfg.Capacity))
		c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))
		return next(c)
	}
}

func (l *localLimiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) > l.cfg.TTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.cfg.TTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}
	v, ok := l.visitors[key]
	if !ok {
		every := l.cfg.RefillInterval / time.Duration(max(l.cfg.RefillTokens, 1))
		v = &visitor{lim: rate.NewLimiter(rate.Every(every), l.cfg.Capacity)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.lim
}

func tooManyRequests(c echo.Context, retry time.Duration) error {
	secs := int(math.Ceil(retry.Seconds()))
	c.Response().Header().Set("Retry-After", strconv.Itoa(max(secs, 0)))
	return utils.JSONError(c, http.StatusTooManyRequests, "Too many requests, please try again later.")
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := userKey(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", uid, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
