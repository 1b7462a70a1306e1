package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RenderRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simview_render_runs_total",
		Help: "Total render calls by output mode",
	}, []string{"mode"})
	RenderErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simview_render_errors_total",
		Help: "Render calls that reported an error",
	}, []string{"mode"})
	RenderDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "simview_render_duration_seconds",
		Help:    "Render duration seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	DegradedSections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simview_degraded_sections_total",
		Help: "Sections rendered as a placeholder because their data was unavailable",
	}, []string{"section"})
	PostsClassified = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simview_posts_classified_total",
		Help: "Posts classified by render category",
	}, []string{"category"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simview_command_runs_total",
		Help: "CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simview_command_errors_total",
		Help: "CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(RenderRuns, RenderErrors, RenderDuration, DegradedSections, PostsClassified, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}

// ObserveRender records one render call of the given mode.
func ObserveRender(mode string, start time.Time, err error) {
	RenderRuns.WithLabelValues(mode).Inc()
	RenderDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	if err != nil {
		RenderErrors.WithLabelValues(mode).Inc()
	}
}

// IncDegraded counts a section that fell back to its placeholder.
func IncDegraded(section string) { DegradedSections.WithLabelValues(section).Inc() }

// IncClassified counts a classified post.
func IncClassified(category string) { PostsClassified.WithLabelValues(category).Inc() }

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
