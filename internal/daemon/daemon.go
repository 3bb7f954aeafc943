package daemon

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/pickuppal/pickuppal/internal/api"
	"github.com/pickuppal/pickuppal/internal/app/session"
	"github.com/pickuppal/pickuppal/internal/infra/observability"
	"github.com/pickuppal/pickuppal/internal/infra/sqlite"
	"github.com/pickuppal/pickuppal/internal/ledger"
	"github.com/pickuppal/pickuppal/internal/transport"
)

// shutdownGrace bounds how long in-flight requests get on shutdown.
const shutdownGrace = 5 * time.Second

// Daemon owns one user session and the HTTP server in front of it.
type Daemon struct {
	cfg       Config
	store     *ledger.Store
	journal   *sqlite.DB
	tracer    *observability.Tracer
	session   *session.Service
	transport *transport.Mock
	server    *api.Server
}

// New builds a daemon from cfg with the default mock seed data.
func New(cfg Config) (*Daemon, error) {
	return NewWithSeed(cfg, ledger.DefaultSeed(time.Now()))
}

// NewWithSeed builds a daemon over the given seed.
func NewWithSeed(cfg Config, seed ledger.Seed) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	journal, err := sqlite.Open()
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	store := ledger.New(seed)
	store.SetJournal(journal)

	tracer := observability.NewTracer(observability.TracerConfig{
		Enabled:  cfg.Telemetry.Tracing,
		MaxSpans: cfg.Telemetry.MaxSpans,
	})

	svc := session.New(session.Config{
		LevelUpPolicy: cfg.Policy(),
		QueueSize:     cfg.Engine.QueueSize,
	}, session.Deps{Store: store, Tracer: tracer})

	mock := transport.New(svc, cfg.TransportDelay())

	srv := api.NewServer(mock)
	srv.SetTimeout(cfg.APITimeout())
	if cfg.Telemetry.Metrics {
		srv.EnableMetrics()
	}

	return &Daemon{
		cfg:       cfg,
		store:     store,
		journal:   journal,
		tracer:    tracer,
		session:   svc,
		transport: mock,
		server:    srv,
	}, nil
}

// Handler returns the HTTP handler.
func (d *Daemon) Handler() http.Handler { return d.server.Handler() }

// Session returns the in-process session API.
func (d *Daemon) Session() *session.Service { return d.session }

// Tracer returns the span recorder.
func (d *Daemon) Tracer() *observability.Tracer { return d.tracer }

// Serve listens on the configured address until ctx is cancelled.
func (d *Daemon) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", d.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", d.cfg.Addr(), err)
	}
	return d.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down
// gracefully and closes the session.
func (d *Daemon) ServeListener(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           d.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("[daemon] listening on %s (policy=%s, delay=%s)",
			ln.Addr(), d.cfg.Engine.LevelUpPolicy, d.transport.Delay())
		errc <- hs.Serve(ln)
	}()

	select {
	case err := <-errc:
		d.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("[daemon] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	err := hs.Shutdown(shutdownCtx)
	d.Close()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Close stops the session queue and closes the journal.
func (d *Daemon) Close() error {
	d.session.Close()
	stats := d.session.QueueStats()
	log.Printf("[daemon] session closed: %d processed, %d skipped", stats.Processed, stats.Skipped)
	return d.journal.Close()
}
