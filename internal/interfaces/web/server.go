// Package web serves the JSON API used by the trip planner front end.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/trip-planner/internal/application/usecases"
	"github.com/example/trip-planner/internal/auth"
)

type Server struct {
	Plan     usecases.PlanTrip
	PlanText *usecases.PlanFromText
	Ping     usecases.PingProviders

	Guard    *auth.Guard
	Visitors *auth.Visitors
	Trips    *TripLog
	Logger   *zap.Logger

	Origins       []string
	RatePerMinute int
	// Timeout bounds one planning request.
	Timeout time.Duration
}

func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(s.recovery())
	r.Use(s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.origins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: !allowAll(s.origins()),
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	api.Use(newRateLimiter(s.RatePerMinute).middleware(s.log()))
	api.Use(s.visitor())
	api.GET("/airports", s.handleAirports)
	api.GET("/destinations", s.handleDestinations)
	api.GET("/trips", s.handleTrips)

	plan := api.Group("")
	plan.Use(s.requireToken())
	plan.POST("/trip", s.handleTrip)
	plan.POST("/trip/text", s.handleTripText)

	return r
}

func (s *Server) origins() []string {
	if len(s.Origins) == 0 {
		return []string{"*"}
	}
	return s.Origins
}

func allowAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (s *Server) log() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Server) timeout() time.Duration {
	if s.Timeout <= 0 {
		return 2 * time.Minute
	}
	return s.Timeout
}

// Start serves h on addr until ctx is cancelled.
func Start(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
