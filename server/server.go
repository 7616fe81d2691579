// Package server composes the listings subgraph into a listening HTTP service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/graph-gophers/graphql-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/n9te9/listings-subgraph/datasources"
	"github.com/n9te9/listings-subgraph/datasources/bookings"
	"github.com/n9te9/listings-subgraph/datasources/listings"
	"github.com/n9te9/listings-subgraph/federation"
	"github.com/n9te9/listings-subgraph/resolvers"
	"github.com/n9te9/listings-subgraph/subgraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type Server struct {
	cfg    *Config
	logger *zap.Logger

	store    bookings.Store
	pool     *pgxpool.Pool
	tracer   *sdktrace.TracerProvider
	registry *prometheus.Registry

	httpServer *http.Server
	listener   net.Listener
}

type Option func(*Server)

// WithStore replaces the bookings store chosen from the configuration.
func WithStore(store bookings.Store) Option {
	return func(s *Server) { s.store = store }
}

// New loads the schema and wires resolvers, datasources and middleware.
// It does not open the listener; a schema that cannot be read or parsed fails here.
func New(ctx context.Context, cfg *Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	typeDefs, err := os.ReadFile(cfg.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	sg, err := federation.NewSubgraph(cfg.SubgraphName, typeDefs)
	if err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", cfg.SchemaFile, err)
	}
	schema, err := federation.BuildSubgraphSchema(sg, resolvers.New(), graphql.MaxParallelism(cfg.MaxParallelism))
	if err != nil {
		return nil, fmt.Errorf("failed to build schema: %w", err)
	}

	if cfg.Tracing.Enabled {
		s.tracer, err = startTracing(ctx, logger, cfg.SubgraphName, cfg.Tracing)
		if err != nil {
			return nil, fmt.Errorf("failed to start tracing: %w", err)
		}
	}

	client, err := listings.NewClient(listings.Config{
		BaseURL:  cfg.ListingsAPI.URL,
		Timeout:  cfg.ListingsAPI.Timeout,
		RetryMax: cfg.ListingsAPI.RetryMax,
		Tracing:  cfg.Tracing.Enabled,
		Logger:   logger.Named("listings_api"),
	})
	if err != nil {
		return nil, s.abort(err)
	}

	if s.store == nil {
		if s.store, err = s.openStore(ctx); err != nil {
			return nil, s.abort(err)
		}
	}

	handler, err := s.newHandler(schema, datasources.NewFactory(client, s.store))
	if err != nil {
		return nil, s.abort(err)
	}
	s.httpServer = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(logger),
	}
	return s, nil
}

func (s *Server) openStore(ctx context.Context) (bookings.Store, error) {
	if s.cfg.BookingsDB.URL == "" {
		s.logger.Info("bookings database not configured, using in-memory store")
		return bookings.NewMemoryStore(), nil
	}

	poolCfg, err := pgxpool.ParseConfig(s.cfg.BookingsDB.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid bookings database url: %w", err)
	}
	if s.cfg.BookingsDB.MaxConns > 0 {
		poolCfg.MaxConns = s.cfg.BookingsDB.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bookings database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping bookings database: %w", err)
	}
	s.pool = pool
	return bookings.NewPostgresStore(pool), nil
}

func (s *Server) newHandler(schema *graphql.Schema, factory datasources.Factory) (http.Handler, error) {
	opts := []subgraph.Option{subgraph.WithLogger(s.logger.Named("graphql"))}

	mux := http.NewServeMux()
	if s.cfg.Metrics.Enabled {
		s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m, err := subgraph.NewMetrics(s.registry, s.cfg.SubgraphName)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		opts = append(opts, subgraph.WithMetrics(m))
		mux.Handle(s.cfg.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	mux.Handle(s.cfg.HealthPath, subgraph.HealthHandler())
	mux.Handle(s.cfg.Endpoint, subgraph.NewHandler(schema, factory, opts...))

	var h http.Handler = mux
	if s.cfg.Tracing.Enabled {
		h = otelhttp.NewHandler(h, s.cfg.SubgraphName)
	}
	if s.cfg.CORS.Enabled {
		h = cors.New(cors.Options{
			AllowedOrigins:   s.cfg.CORS.AllowOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   s.cfg.CORS.AllowHeaders,
			ExposedHeaders:   []string{subgraph.HeaderRequestID},
			AllowCredentials: s.cfg.CORS.AllowCredentials,
			MaxAge:           int(s.cfg.CORS.MaxAge.Seconds()),
		}).Handler(h)
	}
	return h, nil
}

// Listen binds the TCP listener. Bind failures are returned immediately.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	s.listener = ln
	return nil
}

// URL is the GraphQL endpoint URL of a listening server.
func (s *Server) URL() string {
	host := s.cfg.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	port := s.cfg.Port
	if s.listener != nil {
		port = s.listener.Addr().(*net.TCPAddr).Port
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port)) + s.cfg.Endpoint
}

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server is not listening")
	}
	if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.listener != nil {
		errs = append(errs, s.httpServer.Shutdown(ctx))
		s.listener.Close() //nolint:errcheck
	}
	errs = append(errs, s.abort(nil))
	return errors.Join(errs...)
}

// abort releases what New acquired and returns err joined with any release error.
func (s *Server) abort(err error) error {
	errs := []error{err}
	if s.tracer != nil {
		errs = append(errs, s.tracer.Shutdown(context.Background()))
		s.tracer = nil
	}
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return errors.Join(errs...)
}

// Run starts the subgraph and serves until ctx is cancelled or the process is signalled.
func Run(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, os.Interrupt)
	defer stop()

	s, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := s.Listen(); err != nil {
		return errors.Join(err, s.Shutdown(context.Background()))
	}
	logger.Info(fmt.Sprintf("Subgraph %s running at %s", cfg.SubgraphName, s.URL()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve()
	}()

	select {
	case err := <-errCh:
		return errors.Join(err, s.Shutdown(context.Background()))
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
