// Package jobs — tâches de fond périodiques du bot, arrêtées avec le
// contexte du process.
package jobs

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	jobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restobot", Name: "job_runs_total", Help: "Background job executions",
	}, []string{"job"})
	jobFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restobot", Name: "job_failures_total", Help: "Background job executions that returned an error",
	}, []string{"job"})
	jobDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "restobot", Name: "job_duration_seconds", Help: "Background job execution time",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
)

func init() {
	prometheus.MustRegister(jobRuns, jobFailures, jobDuration)
}

type Job func(ctx context.Context) error

type Runner struct {
	ctx context.Context
	log *zap.Logger
}

func NewRunner(ctx context.Context, log *zap.Logger) *Runner {
	return &Runner{ctx: ctx, log: log}
}

// Every — exécute job immédiatement puis à chaque intervalle, jusqu'à
// l'annulation du contexte. Un échec est compté et journalisé, jamais
// fatal: la prochaine échéance retente.
func (r *Runner) Every(interval time.Duration, name string, job Job) {
	go func() {
		r.runOnce(name, job)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				r.runOnce(name, job)
			}
		}
	}()
}

func (r *Runner) runOnce(name string, job Job) {
	start := time.Now()
	err := job(r.ctx)
	jobRuns.WithLabelValues(name).Inc()
	jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		jobFailures.WithLabelValues(name).Inc()
		r.log.Warn("tâche de fond en échec", zap.String("job", name), zap.Error(err))
	}
}
