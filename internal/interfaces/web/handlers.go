package web

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/trip-planner/internal/application/usecases"
	"github.com/example/trip-planner/internal/domain/trip"
	"github.com/example/trip-planner/internal/infrastructure/codes"
	"github.com/example/trip-planner/internal/interfaces/present"
	"github.com/example/trip-planner/internal/internaltypes"
)

func errorBody(msg string) gin.H {
	return gin.H{"success": false, "message": msg}
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"
	switch {
	case errors.Is(err, trip.ErrInvalidRequest), errors.Is(err, trip.ErrInvalidStrategy):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, internaltypes.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, internaltypes.ErrRateLimited):
		status, msg = http.StatusTooManyRequests, "Rate limit exceeded. Try again later."
	case errors.Is(err, internaltypes.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, trip.ErrProviderUnavailable):
		status, msg = http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusGatewayTimeout, "planning timed out"
	}
	c.JSON(status, errorBody(msg))
}

func (s *Server) handleHealth(c *gin.Context) {
	if c.Query("deep") == "1" {
		if err := s.Ping.Execute(c.Request.Context()); err != nil {
			s.log().Warn("health check", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAirports(c *gin.Context) {
	c.JSON(http.StatusOK, codes.PresetAirports)
}

func (s *Server) handleDestinations(c *gin.Context) {
	c.JSON(http.StatusOK, codes.Destinations())
}

func (s *Server) handleTrips(c *gin.Context) {
	trips := []TripSummary{}
	if id := visitorID(c); id != "" && s.Trips != nil {
		trips = s.Trips.List(id)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trips": trips})
}

// tripRequest is the POST /api/trip body. home_airport is accepted as an
// alias of origin.
type tripRequest struct {
	Origin        string  `json:"origin"`
	HomeAirport   string  `json:"home_airport"`
	Destination   string  `json:"destination"`
	DepartureDate string  `json:"departure_date"`
	ReturnDate    string  `json:"return_date"`
	Budget        float64 `json:"budget"`
	Strategy      string  `json:"strategy"`
	Adults        int     `json:"adults"`
	PreferRedEyes bool    `json:"prefer_red_eyes"`
}

func (t tripRequest) toRequest() (trip.Request, error) {
	origin := t.Origin
	if strings.TrimSpace(origin) == "" {
		origin = t.HomeAirport
	}
	req := trip.Request{
		Origin:        origin,
		Destination:   t.Destination,
		TotalBudget:   t.Budget,
		Strategy:      trip.Strategy(t.Strategy),
		Adults:        t.Adults,
		PreferRedEyes: t.PreferRedEyes,
	}
	var err error
	if strings.TrimSpace(t.DepartureDate) != "" {
		if req.DepartureDate, err = trip.ParseDate(t.DepartureDate); err != nil {
			return req, err
		}
	}
	if strings.TrimSpace(t.ReturnDate) != "" {
		if req.ReturnDate, err = trip.ParseDate(t.ReturnDate); err != nil {
			return req, err
		}
	}
	return req, nil
}

func (s *Server) handleTrip(c *gin.Context) {
	var body tripRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout())
	defer cancel()
	res, err := s.Plan.Execute(ctx, req)
	if err != nil {
		s.log().Warn("plan trip", zap.Error(err))
		writeError(c, err)
		return
	}
	s.respond(c, res)
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleTripText(c *gin.Context) {
	if s.PlanText == nil {
		c.JSON(http.StatusNotImplemented, errorBody("natural-language planning is not configured"))
		return
	}
	var body textRequest
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		c.JSON(http.StatusBadRequest, errorBody("text is required"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout())
	defer cancel()
	res, err := s.PlanText.Execute(ctx, body.Text)
	if err != nil {
		s.log().Warn("plan trip from text", zap.Error(err))
		writeError(c, err)
		return
	}
	s.respond(c, res)
}

func (s *Server) respond(c *gin.Context, res usecases.Result) {
	if id := visitorID(c); id != "" && s.Trips != nil {
		s.Trips.Add(id, res)
	}

	var out bytes.Buffer
	if err := (present.Printer{Out: &out}).Text(res); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"trip_id": res.ID,
		"output":  out.String(),
		"result":  res,
	})
}
