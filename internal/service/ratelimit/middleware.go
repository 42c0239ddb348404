package ratelimit

import (
	"strconv"

	xhttp "TrendBoard/pkg/http"

	"github.com/labstack/echo/v4"
)

// Config describes a per-client bucket.
type Config struct {
	Enabled      bool    `yaml:"enabled" default:"true"`
	Capacity     float64 `yaml:"capacity" default:"5"`
	RefillPerSec float64 `yaml:"refill_per_sec" default:"0.2"`
}

// Middleware limits requests per client IP. Denied requests get a 429
// envelope and a Retry-After hint.
func Middleware(l *Limiter, cfg Config) echo.MiddlewareFunc {
	retryAfter := "1"
	if cfg.RefillPerSec > 0 {
		retryAfter = strconv.Itoa(int(1/cfg.RefillPerSec + 0.5))
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Enabled {
				return next(c)
			}
			if !l.Allow(c.RealIP(), cfg.Capacity, cfg.RefillPerSec) {
				c.Response().Header().Set("Retry-After", retryAfter)
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limit exceeded"))
			}
			return next(c)
		}
	}
}
