// Package background exécute les tâches « fire-and-forget » (affinage de région,
// traductions) sur un pool borné, vidé à l'arrêt du serveur.
package background

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

var tasks = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pikmin_background_tasks_total",
	Help: "Background tasks by name and outcome.",
}, []string{"task", "result"})

// Runner borne le nombre de tâches simultanées
type Runner struct {
	p      *pool.Pool
	ctx    context.Context
	cancel context.CancelFunc
	stop   chan struct{}

	mu      sync.RWMutex
	closed  bool
	pending sync.WaitGroup
}

// NewRunner crée un runner de maxGoroutines tâches simultanées au plus
func NewRunner(maxGoroutines int) *Runner {
	if maxGoroutines <= 0 {
		maxGoroutines = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		p:      pool.New().WithMaxGoroutines(maxGoroutines),
		ctx:    ctx,
		cancel: cancel,
		stop:   make(chan struct{}),
	}
}

// Go lance fn. Bloque si le pool est plein. Ignoré après Close.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		tasks.WithLabelValues(name, "skipped").Inc()
		logger.Debug("background task %s skipped: runner closed", name)
		return
	}
	r.p.Go(func() { r.run(name, fn) })
}

// After lance fn après delay. La tâche est abandonnée si le runner est fermé avant.
func (r *Runner) After(delay time.Duration, name string, fn func(ctx context.Context) error) {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		tasks.WithLabelValues(name, "skipped").Inc()
		return
	}
	r.pending.Add(1)
	r.mu.RUnlock()

	go func() {
		defer r.pending.Done()
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-r.stop:
			tasks.WithLabelValues(name, "skipped").Inc()
			logger.Debug("delayed task %s dropped at shutdown", name)
			return
		case <-t.C:
		}
		r.Go(name, fn)
	}()
}

func (r *Runner) run(name string, fn func(ctx context.Context) error) {
	defer func() {
		if rec := recover(); rec != nil {
			tasks.WithLabelValues(name, "panic").Inc()
			logger.L().Error("background task panicked", zap.String("task", name), zap.Any("panic", rec))
		}
	}()

	start := time.Now()
	if err := fn(r.ctx); err != nil {
		tasks.WithLabelValues(name, "error").Inc()
		logger.L().Warn("background task failed",
			zap.String("task", name),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	tasks.WithLabelValues(name, "ok").Inc()
}

// Close refuse les nouvelles tâches, abandonne les tâches différées en attente et
// attend la fin des tâches en cours. Si ctx expire avant, leur contexte est annulé.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.stop)
	r.mu.Unlock()

	r.pending.Wait()

	done := make(chan struct{})
	go func() {
		r.p.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		return fmt.Errorf("background drain: %w", ctx.Err())
	}
}
