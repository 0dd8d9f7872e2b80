package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/logging"
)

// Logger wraps every request/response pair and reports it through the
// injected structured logger: an entry marker naming the route and
// method, and a completion entry carrying the final status and latency.
// Logging is best-effort and never aborts the request.
func Logger(log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid, _ := c.Locals(RequestIDLocalKey).(string)
		method := c.Method()
		path := c.Path()

		log.WithFields(logging.Fields{
			"request_id": rid,
			"method":     method,
			"path":       path,
		}).Info("request received")

		start := time.Now()
		err := c.Next()

		// Resolve the status the client will actually see; errors are
		// rendered by the global error handler after this middleware.
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
		}

		log.WithFields(logging.Fields{
			"request_id": rid,
			"method":     method,
			"path":       path,
			"status":     status,
			"latency":    float64(time.Since(start).Milliseconds()),
		}).Info("request completed")

		return err
	}
}
