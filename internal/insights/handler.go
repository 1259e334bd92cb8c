// Package insights exposes the gateway operations over HTTP. Each view
// session owns one slot per operation: POST starts (replacing any pending
// call), GET polls, DELETE cancels.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"candidate-insights/internal/candidates"
	"candidate-insights/internal/flight"
	"candidate-insights/internal/gateway"
	"candidate-insights/internal/query"
	"candidate-insights/internal/shared/server/middleware"
	"candidate-insights/internal/shared/server/respond"
)

const maxProfileBody = 64 << 10

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// Runner is the gateway surface used by the handler.
type Runner interface {
	RunPoolAnalysis(ctx context.Context, cs []candidates.Candidate) (gateway.AnalysisReport, error)
	RunPrediction(ctx context.Context, profile gateway.Profile) (gateway.PredictionResult, error)
}

// Handler wires HTTP handlers to the gateway through the flight registry.
type Handler struct {
	Gateway Runner
	Store   *candidates.Store
	Flights *flight.Registry
	poll    *pollLimiter
}

// NewHandler constructs a Handler. pollWindow <= 0 uses the default window.
func NewHandler(gw Runner, store *candidates.Store, flights *flight.Registry, pollWindow time.Duration) *Handler {
	return &Handler{
		Gateway: gw,
		Store:   store,
		Flights: flights,
		poll:    newPollLimiter(pollWindow, nil),
	}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions/:sessionId")
	sessions.POST("/analysis", h.startAnalysis)
	sessions.GET("/analysis", h.snapshot(gateway.OpPoolAnalysis))
	sessions.DELETE("/analysis", h.cancel(gateway.OpPoolAnalysis))
	sessions.POST("/prediction", h.startPrediction)
	sessions.GET("/prediction", h.snapshot(gateway.OpPrediction))
	sessions.DELETE("/prediction", h.cancel(gateway.OpPrediction))
}

func (h *Handler) startAnalysis(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	pool := h.Store.All()
	h.start(c, sessionID, gateway.OpPoolAnalysis, func(ctx context.Context) (any, error) {
		report, err := h.Gateway.RunPoolAnalysis(ctx, pool)
		if err != nil {
			return nil, err
		}
		return report, nil
	})
}

func (h *Handler) startPrediction(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}

	profile, err := decodeProfile(c.Request.Body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid profile: "+err.Error(), nil)
		return
	}
	if err := gateway.ValidateProfile(profile); err != nil {
		var vErr *query.ValidationError
		if errors.As(err, &vErr) {
			respond.Error(c, http.StatusBadRequest, "validation_error", vErr.Error(), []map[string]string{
				{"field": vErr.Field, "issue": vErr.Message},
			})
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid profile", nil)
		return
	}

	h.start(c, sessionID, gateway.OpPrediction, func(ctx context.Context) (any, error) {
		result, err := h.Gateway.RunPrediction(ctx, profile)
		if err != nil {
			return nil, err
		}
		return result, nil
	})
}

func (h *Handler) start(c *gin.Context, sessionID, op string, fn flight.Func) {
	snap, err := h.Flights.Start(sessionID, op, fn)
	if err != nil {
		if errors.Is(err, flight.ErrClosed) {
			respond.Error(c, http.StatusServiceUnavailable, "shutting_down", "server is shutting down", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start request", nil)
		return
	}
	c.Set(middleware.OperationKey, op)
	c.Set(middleware.RunIDKey, snap.RunID)

	respond.Accepted(c, gin.H{
		"runId":  snap.RunID,
		"status": snap.Status,
	})
}

func (h *Handler) snapshot(op string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionParam(c)
		if !ok {
			return
		}
		if !h.poll.Allow(sessionID, op) {
			c.Header("Retry-After", strconv.Itoa(h.poll.RetryAfterSeconds()))
			respond.Error(c, http.StatusTooManyRequests, "poll_rate_limited", "polling too frequently", nil)
			return
		}
		snap := h.Flights.Get(sessionID, op)
		c.Set(middleware.OperationKey, op)
		c.Set(middleware.RunIDKey, snap.RunID)
		respond.OK(c, snap)
	}
}

func (h *Handler) cancel(op string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionParam(c)
		if !ok {
			return
		}
		snap, _ := h.Flights.Cancel(sessionID, op)
		c.Set(middleware.OperationKey, op)
		c.Set(middleware.RunIDKey, snap.RunID)
		respond.OK(c, snap)
	}
}

// SweepPollers trims the poll limiter; it runs alongside the flight sweeper.
func (h *Handler) SweepPollers() {
	h.poll.Forget()
}

// DescribeError is the flight.Options.Describe used with the gateway.
func DescribeError(err error) flight.ErrorView {
	var gwErr *gateway.GatewayError
	if errors.As(err, &gwErr) {
		return flight.ErrorView{Kind: string(gwErr.Kind), Message: gwErr.Message}
	}
	if errors.Is(err, context.Canceled) {
		return flight.ErrorView{Kind: string(gateway.KindCanceled), Message: "The request was canceled."}
	}
	return flight.ErrorView{Kind: "internal", Message: "The request failed."}
}

func sessionParam(c *gin.Context) (string, bool) {
	sessionID := c.Param("sessionId")
	if !sessionIDPattern.MatchString(sessionID) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sessionId must be 1-128 letters, digits, '-' or '_'", []map[string]string{
			{"field": "sessionId", "issue": "invalid"},
		})
		return "", false
	}
	return sessionID, true
}

func decodeProfile(body io.Reader) (gateway.Profile, error) {
	var profile gateway.Profile
	dec := json.NewDecoder(io.LimitReader(body, maxProfileBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&profile); err != nil {
		if errors.Is(err, io.EOF) {
			return profile, errors.New("request body is empty")
		}
		return profile, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return gateway.Profile{}, errors.New("request body must contain a single JSON object")
	}
	return profile, nil
}
