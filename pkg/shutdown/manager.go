// Package shutdown coordinates graceful teardown. Components register
// in startup order and are shut down in reverse, so servers close
// before the services they call and the database pool closes last.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var shutdownDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "shutdown_duration_seconds",
	Help:    "Total time taken to shut down gracefully",
	Buckets: []float64{1, 5, 10, 15, 20, 25, 30},
})

// Func shuts down one component.
type Func func(context.Context) error

type component struct {
	name string
	fn   Func
}

// Manager runs registered shutdown functions in LIFO order under a
// shared timeout.
type Manager struct {
	mu         sync.Mutex
	components []component
	logger     *zap.Logger
	timeout    time.Duration
}

func NewManager(logger *zap.Logger, timeout time.Duration) *Manager {
	return &Manager{logger: logger, timeout: timeout}
}

// Register adds a component. Registration order is startup order;
// shutdown runs in reverse.
func (sm *Manager) Register(name string, fn Func) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.components = append(sm.components, component{name: name, fn: fn})
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then runs Shutdown.
func (sm *Manager) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	sm.logger.Info("shutdown signal received",
		zap.String("signal", sig.String()),
		zap.Duration("timeout", sm.timeout))

	sm.Shutdown()
}

// Shutdown tears down every registered component in reverse order.
func (sm *Manager) Shutdown() {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	sm.mu.Lock()
	components := make([]component, len(sm.components))
	copy(components, sm.components)
	sm.mu.Unlock()

	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		componentStart := time.Now()
		if err := c.fn(ctx); err != nil {
			sm.logger.Error("component shutdown failed",
				zap.String("component", c.name), zap.Error(err))
			continue
		}
		sm.logger.Info("component shut down",
			zap.String("component", c.name),
			zap.Duration("elapsed", time.Since(componentStart)))
	}

	shutdownDuration.Observe(time.Since(start).Seconds())
	sm.logger.Info("graceful shutdown complete",
		zap.Duration("elapsed", time.Since(start)))
}
