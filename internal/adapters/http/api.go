package http

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimali10381-lab/Bloomwatch/internal/core/domain"
)

// ListCountriesHandler returns the selectable region names, World first.
func ListCountriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		names, err := deps.Boundaries.Countries(c.UserContext())
		if err != nil {
			return errInternal(c, "failed to list countries")
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 || limit < 1 || limit > 500 {
			return errBadRequest(c, "invalid pagination parameters")
		}

		total := len(names)
		if offset > total {
			offset = total
		}
		end := offset + limit
		if end > total {
			end = total
		}

		p := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, p)
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(PaginatedResponse{Data: names[offset:end], Pagination: p})
	}
}

// GetCountryHandler returns one boundary's name and bounding box.
func GetCountryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, err := decodePathParam(c, "name")
		if err != nil {
			return errBadRequest(c, "invalid country name")
		}

		b, err := deps.Boundaries.Resolve(c.UserContext(), name)
		if err != nil {
			if errors.Is(err, domain.ErrCountryNotFound) {
				return errNotFound(c, "country not found: "+name)
			}
			return errInternal(c, "failed to load country")
		}
		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(b)
	}
}

// TimeSeriesHandler computes a one-year series of regional means as JSON.
// Null values mark buckets with no valid pixels.
func TimeSeriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		country := c.Query("country", domain.WorldName)
		year := c.QueryInt("year", DefaultYear)
		if year < FirstYear || year > LastYear {
			return errBadRequest(c, "year out of range")
		}

		var metric domain.Metric
		switch c.Query("metric", "ndvi") {
		case "ndvi":
			metric = domain.MetricNDVI
		case "bloom":
			metric = domain.MetricBloom
		default:
			return errBadRequest(c, "metric must be ndvi or bloom")
		}

		var gran domain.Granularity
		switch c.Query("granularity", "composite") {
		case "composite":
			gran = domain.GranularityComposite
		case "monthly":
			gran = domain.GranularityMonthly
		default:
			return errBadRequest(c, "granularity must be composite or monthly")
		}

		var src domain.Source
		switch c.Query("source", "modis") {
		case "modis":
			src = domain.SourceMODIS
		case "s2":
			src = domain.SourceSentinel2
		default:
			return errBadRequest(c, "source must be modis or s2")
		}

		b, err := deps.Boundaries.Resolve(ctx, country)
		if err != nil {
			if errors.Is(err, domain.ErrCountryNotFound) {
				return errNotFound(c, "country not found: "+country)
			}
			return errInternal(c, "failed to load country")
		}

		ts, err := deps.TimeSeries.Series(ctx, b, src, year, gran, metric)
		if err != nil {
			if domain.IsFetchError(err) {
				return errBadGateway(c, "raster service unavailable")
			}
			return errInternal(c, "failed to compute time series")
		}
		return c.JSON(ts)
	}
}

func decodePathParam(c *fiber.Ctx, name string) (string, error) {
	raw := c.Params(name)
	if raw == "" {
		return "", fiber.ErrBadRequest
	}
	return url.PathUnescape(raw)
}
