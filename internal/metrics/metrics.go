// Package metrics records intake and pipeline activity as Prometheus
// collectors fed by the service lifecycle hooks.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/triage/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "triage"

// Recorder owns the collectors and the registry they are registered on.
type Recorder struct {
	registry *prometheus.Registry

	answers       *prometheus.CounterVec
	intakes       *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageAttempts *prometheus.CounterVec
	jobs          *prometheus.CounterVec
	jobDuration   prometheus.Histogram
}

// New creates a Recorder on a private registry, so several instances can
// live in one process.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "answers_total",
				Help:      "Total number of intake answers accepted, by language.",
			},
			[]string{"language"},
		),
		intakes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "intakes_completed_total",
				Help:      "Total number of completed intake questionnaires, by language.",
			},
			[]string{"language"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stage attempts.",
				Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"stage", "outcome"},
		),
		stageAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_attempts_total",
				Help:      "Total number of pipeline stage attempts, by outcome.",
			},
			[]string{"stage", "outcome"},
		),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "jobs_total",
				Help:      "Total number of finished pipeline jobs, by status.",
			},
			[]string{"status"},
		),
		jobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "job_duration_seconds",
				Help:      "End to end duration of pipeline jobs.",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
	}
	r.registry.MustRegister(
		r.answers,
		r.intakes,
		r.stageDuration,
		r.stageAttempts,
		r.jobs,
		r.jobDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry exposes the registry, mostly for tests and custom exporters.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Hooks returns lifecycle callbacks that feed the collectors.
func (r *Recorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			r.answers.WithLabelValues(languageLabel(e.Language)).Inc()
		},
		OnIntakeComplete: func(_ context.Context, e *domain.AnswerEvent) {
			r.intakes.WithLabelValues(languageLabel(e.Language)).Inc()
		},
		OnStageEnd: func(_ context.Context, e *domain.StageEvent) {
			outcome := Outcome(e.Err)
			r.stageDuration.WithLabelValues(string(e.Stage), outcome).Observe(e.Duration.Seconds())
			r.stageAttempts.WithLabelValues(string(e.Stage), outcome).Inc()
		},
		OnJobFinish: func(_ context.Context, e *domain.JobEvent) {
			r.jobs.WithLabelValues(string(e.Status)).Inc()
			r.jobDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Outcome maps a stage error to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(domain.ClassifyStageError("", err).Kind)
}

// The language answer is empty only before selection.
func languageLabel(lang string) string {
	if lang == "" {
		return "none"
	}
	return lang
}
