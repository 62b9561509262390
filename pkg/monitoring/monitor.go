package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 引擎指标
	GradedSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladder_test_submissions_total",
			Help: "Graded test submissions by verdict",
		},
		[]string{"result"},
	)

	LevelCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladder_level_completions_total",
			Help: "Levels reaching completed, by level kind",
		},
		[]string{"kind"},
	)

	AchievementsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladder_achievements_granted_total",
			Help: "Achievements granted by code",
		},
		[]string{"code"},
	)

	SignoffDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladder_signoff_decisions_total",
			Help: "Sign-off requests closed by decision",
		},
		[]string{"decision"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(GradedSubmissions)
	prometheus.MustRegister(LevelCompletions)
	prometheus.MustRegister(AchievementsGranted)
	prometheus.MustRegister(SignoffDecisions)
}

// Verdict is the label value for a graded submission.
func Verdict(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
