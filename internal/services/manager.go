// Package services assembles the trigger engine: configuration in,
// transports, registry, orchestrator and servers out, with one place
// owning startup order and teardown.
package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/quiverhq/quiver/internal/api"
	"github.com/quiverhq/quiver/internal/condition"
	"github.com/quiverhq/quiver/internal/config"
	"github.com/quiverhq/quiver/internal/dispatch"
	"github.com/quiverhq/quiver/internal/dispatch/transport"
	"github.com/quiverhq/quiver/internal/ingest"
	"github.com/quiverhq/quiver/internal/ratelimit"
	"github.com/quiverhq/quiver/internal/registry"
	"github.com/quiverhq/quiver/internal/trigger"
	"github.com/quiverhq/quiver/pkg/model"
)

const (
	httpReadTimeout  = 30 * time.Second
	httpWriteTimeout = 30 * time.Second
	httpIdleTimeout  = 120 * time.Second
)

// Manager owns the engine's components and their lifecycles.
type Manager struct {
	cfg *config.Config
	log *zap.Logger

	registry   *registry.Registry
	engine     *trigger.Service
	httpServer *http.Server

	natsConn    *nats.Conn
	redisClient *redis.Client
	rpc         *transport.RPC

	wg sync.WaitGroup
}

// NewManager creates an uninitialized Manager.
func NewManager(cfg *config.Config, log *zap.Logger) *Manager {
	return &Manager{cfg: cfg, log: log}
}

// Registry exposes the trigger registry, mainly for tests and tooling.
func (m *Manager) Registry() *registry.Registry {
	return m.registry
}

// Engine exposes the orchestrator, mainly for tests and tooling.
func (m *Manager) Engine() *trigger.Service {
	return m.engine
}

// Init builds every component. Sink transports are wired only when their
// backing service is configured; actions of an unwired kind fail as
// unknown-kind deliveries rather than blocking startup.
func (m *Manager) Init() error {
	m.registry = registry.New()

	dispatcher := dispatch.NewDispatcher(m.log,
		dispatch.WithBackoffBase(m.cfg.Engine.BackoffBase.Std()))
	dispatcher.Register(model.KindHTTP, transport.NewHTTP())

	m.rpc = transport.NewRPC()
	dispatcher.Register(model.KindRPC, m.rpc)

	if m.cfg.NATS.URL != "" {
		nc, err := nats.Connect(m.cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		m.natsConn = nc

		queue, err := transport.NewQueue(nc)
		if err != nil {
			return fmt.Errorf("create queue transport: %w", err)
		}
		dispatcher.Register(model.KindQueue, queue)
	}

	if m.cfg.Redis.Addr != "" {
		m.redisClient = redis.NewClient(&redis.Options{Addr: m.cfg.Redis.Addr})
		dispatcher.Register(model.KindPubSub, transport.NewPubSub(m.redisClient))
	}

	m.engine = trigger.NewService(m.log, m.registry,
		condition.NewEvaluator(m.log),
		ratelimit.NewLimiter(m.cfg.Engine.RateWindow.Std()),
		dispatcher)

	if m.cfg.Triggers.File != "" {
		if err := m.seedTriggers(m.cfg.Triggers.File); err != nil {
			return err
		}
	}

	m.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", m.cfg.API.Port),
		Handler:      api.NewServer(m.log, m.engine, m.registry),
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleTimeout,
	}

	return nil
}

func (m *Manager) seedTriggers(path string) error {
	defs, err := trigger.LoadTriggersFromFile(path)
	if err != nil {
		return fmt.Errorf("seed triggers: %w", err)
	}
	for _, def := range defs {
		if err := m.registry.AddOrReplace(def); err != nil {
			return fmt.Errorf("seed triggers: %w", err)
		}
	}
	m.log.Info("triggers seeded", zap.String("file", path), zap.Int("count", len(defs)))
	return nil
}

// Run starts the HTTP server and, when configured, the NATS event
// consumer. It blocks until the context is cancelled or a server fails.
func (m *Manager) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.log.Info("http server listening", zap.String("addr", m.httpServer.Addr))
		if err := m.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if m.cfg.NATS.Consume && m.natsConn != nil {
		consumer, err := ingest.NewConsumer(m.log, m.natsConn, m.engine,
			m.cfg.NATS.Stream, m.cfg.NATS.Subject)
		if err != nil {
			return fmt.Errorf("create event consumer: %w", err)
		}
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("event consumer: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
