package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"weatherbtc/internal/price"
	"weatherbtc/internal/probe"
	"weatherbtc/internal/source"
	"weatherbtc/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, weatherAgg *weather.Aggregator, priceAgg *price.Aggregator, statuses *probe.Registry, log zerolog.Logger) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Weather & Bitcoin API",
			"endpoints": fiber.Map{
				"weather": "/weather?city=<name>",
				"bitcoin": fiber.Map{
					"best_source":     "/bitcoin",
					"all_sources":     "/bitcoin/all",
					"specific_source": "/bitcoin/source/<source>",
				},
				"status":  "/status/sources",
				"metrics": "/metrics",
			},
			"available_price_sources": priceAgg.SourceNames(),
		})
	})

	app.Get("/weather", func(c *fiber.Ctx) error {
		q := weatherQuery{City: c.Query("city")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "city query parameter is required")
		}

		reqID := uuid.NewString()
		res, err := weatherAgg.Fetch(c.UserContext(), q.City)
		if err != nil {
			return failureResponse(c, log, reqID, err)
		}

		return c.JSON(fiber.Map{
			"request_id": reqID,
			"weather":    res.Reading,
			"attempts":   res.Attempts,
		})
	})

	app.Get("/bitcoin", func(c *fiber.Ctx) error {
		reqID := uuid.NewString()
		res, err := priceAgg.Fetch(c.UserContext())
		if err != nil {
			return failureResponse(c, log, reqID, err)
		}

		return c.JSON(fiber.Map{
			"request_id": reqID,
			"bitcoin":    res.Quote,
			"attempts":   res.Attempts,
		})
	})

	app.Get("/bitcoin/all", func(c *fiber.Ctx) error {
		results := priceAgg.FetchAll(c.UserContext())

		successful := 0
		for _, r := range results {
			if r.Quote != nil {
				successful++
			}
		}

		return c.JSON(fiber.Map{
			"request_id":         uuid.NewString(),
			"sources":            results,
			"successful_sources": successful,
			"failed_sources":     len(results) - successful,
		})
	})

	app.Get("/bitcoin/source/:source", func(c *fiber.Ctx) error {
		name := c.Params("source")
		quote, err := priceAgg.FetchFrom(c.UserContext(), name)
		if err != nil {
			if errors.Is(err, price.ErrUnknownSource) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error":             "unknown source",
					"available_sources": priceAgg.SourceNames(),
				})
			}
			return sourceFailureResponse(c, name, err)
		}

		return c.JSON(quote)
	})

	app.Get("/status/sources", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sources": statuses.All(),
		})
	})
}

// weatherQuery holds query parameters for the weather endpoint.
type weatherQuery struct {
	City string `validate:"required,min=1"`
}

// failureResponse maps an exhausted fallback run to a structured 502 body
// enumerating every attempted source and its failure kind.
func failureResponse(c *fiber.Ctx, log zerolog.Logger, reqID string, err error) error {
	var attempts []source.Attempt
	var msg string

	var wf *weather.AllFailedError
	var pf *price.AllFailedError
	switch {
	case errors.As(err, &wf):
		attempts, msg = wf.Attempts, "all weather sources failed"
	case errors.As(err, &pf):
		attempts, msg = pf.Attempts, "all bitcoin price sources failed"
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	log.Error().Str("request_id", reqID).Int("attempts", len(attempts)).Msg(msg)

	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"request_id": reqID,
		"error":      msg,
		"attempts":   attempts,
	})
}

// sourceFailureResponse maps a single-source failure kind to an HTTP status.
func sourceFailureResponse(c *fiber.Ctx, name string, err error) error {
	status := fiber.StatusBadGateway

	var se *source.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case source.KindTimeout:
			status = fiber.StatusGatewayTimeout
		case source.KindUnreachable:
			status = fiber.StatusServiceUnavailable
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"source": name,
		"error":  err.Error(),
	})
}
