package monitoring

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PaymentsReviewed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_reviewed_total",
			Help: "Payments moved out of PENDING, by resulting status",
		},
		[]string{"status"},
	)

	CommissionsPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "referral_commissions_posted_total",
			Help: "Referral earnings created, by level",
		},
		[]string{"level"},
	)

	WithdrawalsRequested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "referral_withdrawals_requested_total",
			Help: "Accepted referral withdrawal requests",
		},
	)

	BotReports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_reports_total",
			Help: "Reports received from the trading bot, by kind",
		},
		[]string{"kind"},
	)
)

// Middleware records request count and latency per route template.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		HttpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		ResponseTimeHistogram.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}
