package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RouteLogger writes one completion line per request with status, duration
// and trace ID. The admin surface sees scheduler traffic, not users, so one
// line per request is enough to reconstruct a trigger attempt.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		log.Info().
			Str("trace_id", GetTraceID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Int64("ms", time.Since(start).Milliseconds()).
			Msg("http: request handled")
		return err
	}
}
