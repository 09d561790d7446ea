package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	LoginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "login_success_total",
		Help: "Total successful login attempts",
	})

	LoginFailure = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "login_failure_total",
		Help: "Total failed login attempts",
	}, []string{"reason"})

	RegisterSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "register_success_total",
		Help: "Total successful register attempts",
	})

	DiscussionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discussions_created_total",
		Help: "Total discussions successfully created",
	})

	RepliesPosted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "replies_posted_total",
		Help: "Total replies successfully posted",
	})

	LikeToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "like_toggles_total",
		Help: "Total like toggles by resulting state",
	}, []string{"state"})

	ModerationActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_actions_total",
		Help: "Total admin moderation actions",
	}, []string{"action"})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(LoginSuccess)
	prometheus.MustRegister(LoginFailure)
	prometheus.MustRegister(RegisterSuccess)
	prometheus.MustRegister(DiscussionsCreated)
	prometheus.MustRegister(RepliesPosted)
	prometheus.MustRegister(LikeToggles)
	prometheus.MustRegister(ModerationActions)
}

// Instrument records the duration of every request, labelled by route
// template rather than raw path.
func Instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
