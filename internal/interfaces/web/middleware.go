package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/trip-planner/internal/internaltypes"
)

const visitorKey = "visitor"

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		s.log().Error("unhandled panic", zap.Any("error", rec), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody("internal server error"))
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log().Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.Guard.Check(c.Request); err != nil {
			writeError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// visitor attaches the visitor id, issuing the cookie on first contact.
func (s *Server) visitor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.Visitors == nil {
			c.Next()
			return
		}
		id, err := s.Visitors.Ensure(c.Writer, c.Request)
		if err != nil {
			s.log().Warn("visitor cookie", zap.Error(err))
		} else {
			c.Set(visitorKey, id)
		}
		c.Next()
	}
}

func visitorID(c *gin.Context) string {
	return c.GetString(visitorKey)
}

// limiterIdle is how long an IP may go quiet before its limiter is dropped.
// A limiter idle that long has refilled, so dropping it loses nothing.
const limiterIdle = 10 * time.Minute

type visitorLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitorLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
	swept    time.Time
}

// newRateLimiter allows perMinute requests per client IP; zero or less
// disables limiting.
func newRateLimiter(perMinute int) *rateLimiter {
	if perMinute <= 0 {
		return &rateLimiter{limit: rate.Inf}
	}
	return &rateLimiter{
		limiters: map[string]*visitorLimiter{},
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		now:      time.Now,
	}
}

func (l *rateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.swept) >= limiterIdle {
		l.sweep(now)
	}
	v, ok := l.limiters[ip]
	if !ok {
		v = &visitorLimiter{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = v
	}
	v.seen = now
	return v.lim
}

// sweep drops limiters idle for limiterIdle or longer. Callers hold l.mu.
func (l *rateLimiter) sweep(now time.Time) {
	for ip, v := range l.limiters {
		if now.Sub(v.seen) >= limiterIdle {
			delete(l.limiters, ip)
		}
	}
	l.swept = now
}

func (l *rateLimiter) middleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit == rate.Inf {
			c.Next()
			return
		}
		ip := c.ClientIP()
		if !l.get(ip).Allow() {
			log.Warn("rate limit exceeded", zap.String("ip", ip))
			writeError(c, internaltypes.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}
