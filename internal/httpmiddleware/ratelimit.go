package httpmiddleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter is a per-client admission check.
type Limiter interface {
	GinMiddleware() gin.HandlerFunc
}

// SimpleTokenBucket is an in-memory rate limiter used when redis is not
// available.
type SimpleTokenBucket struct {
	capacity int
	rate     int
	mu       sync.Mutex
	state    map[string]*bucket
}

type bucket struct {
	tokens int
	last   time.Time
}

// NewSimpleTokenBucket creates limiter with capacity tokens and rate per minute.
func NewSimpleTokenBucket(capacity, perMinute int) *SimpleTokenBucket {
	if capacity <= 0 {
		capacity = perMinute
	}
	return &SimpleTokenBucket{
		capacity: capacity,
		rate:     perMinute,
		state:    make(map[string]*bucket),
	}
}

// GinMiddleware returns gin handler enforcing per-IP limits.
func (l *SimpleTokenBucket) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

func (l *SimpleTokenBucket) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.state[key]
	now := time.Now()
	if !ok {
		b = &bucket{tokens: l.capacity - 1, last: now}
		l.state[key] = b
		return true
	}
	elapsed := now.Sub(b.last).Minutes()
	refill := int(elapsed * float64(l.rate))
	if refill > 0 {
		b.tokens += refill
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// RedisSlidingWindow enforces per-IP limits with a redis sorted set per
// client, so limits hold across instances. On redis errors it fails open.
type RedisSlidingWindow struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisSlidingWindow creates a limiter allowing limit requests per window.
func NewRedisSlidingWindow(client *redis.Client, prefix string, limit int, window time.Duration) *RedisSlidingWindow {
	if prefix == "" {
		prefix = "workforce:rate-limit"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisSlidingWindow{client: client, prefix: prefix, limit: limit, window: window}
}

// GinMiddleware returns gin handler enforcing per-IP limits.
func (l *RedisSlidingWindow) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		allowed, err := l.allow(c, ip)
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

func (l *RedisSlidingWindow) allow(c *gin.Context, key string) (bool, error) {
	ctx := c.Request.Context()
	now := time.Now()
	rkey := l.prefix + ":" + key
	threshold := fmt.Sprintf("%d", now.Add(-l.window).UnixNano())

	if err := l.client.ZRemRangeByScore(ctx, rkey, "-inf", threshold).Err(); err != nil {
		return true, err
	}
	count, err := l.client.ZCard(ctx, rkey).Result()
	if err != nil {
		return true, err
	}
	if int(count) >= l.limit {
		return false, nil
	}
	member := redis.Z{Score: float64(now.UnixNano()), Member: now.UnixNano()}
	if err := l.client.ZAdd(ctx, rkey, member).Err(); err != nil {
		return true, err
	}
	if err := l.client.Expire(ctx, rkey, l.window*2).Err(); err != nil {
		return true, err
	}
	return true, nil
}
