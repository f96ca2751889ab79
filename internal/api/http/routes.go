package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/coronaboard-data/internal/stats"
	"github.com/i474232898/coronaboard-data/internal/store"
)

const refreshTimeout = 2 * time.Minute

var validate = validator.New()

// Service is the part of stats.Service the handlers need.
type Service interface {
	Refresh(ctx context.Context, anchor time.Time) (*stats.RefreshResult, error)
	GetLatest() (stats.Dashboard, error)
	GetRange(from, to time.Time) ([]stats.Dashboard, error)
	GetSeries(key string) (*stats.CountrySeries, error)
}

// AnchorFunc maps the request time to the reference instant for a refresh.
type AnchorFunc func(now time.Time) (time.Time, error)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Service, anchor AnchorFunc) {
	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		dashboard, err := service.GetLatest()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no dashboard computed yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load dashboard")
		}

		return c.JSON(dashboard)
	})

	v1.Get("/dashboard/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		dashboards, err := service.GetRange(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no dashboards in requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load dashboard history")
		}

		return c.JSON(fiber.Map{
			"from":       req.From,
			"to":         req.To,
			"dashboards": dashboards,
		})
	})

	v1.Get("/series/:key", func(c *fiber.Ctx) error {
		q := seriesQuery{Key: c.Params("key")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		series, err := service.GetSeries(q.Key)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no series for requested key")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load series")
		}

		return c.JSON(series)
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		at, err := anchor(time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), refreshTimeout)
		defer cancel()

		result, err := service.Refresh(ctx, at)
		if err != nil {
			var missing *stats.MissingDataError
			var unavailable *stats.ProviderUnavailableError
			switch {
			case errors.As(err, &missing):
				return fiber.NewError(fiber.StatusConflict, err.Error())
			case errors.As(err, &unavailable):
				return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, "refresh failed")
			}
		}

		failures := result.WriteFailures
		if failures == nil {
			failures = []stats.WriteFailure{}
		}
		return c.JSON(fiber.Map{
			"runId":         result.Dashboard.RunID,
			"referenceDate": result.Dashboard.ReferenceDate,
			"written":       result.Written,
			"writeFailures": failures,
		})
	})
}

// seriesQuery validates a series key path parameter.
type seriesQuery struct {
	Key string `validate:"required,alphanum,max=16"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
