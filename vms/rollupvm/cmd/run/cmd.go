// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	luxvm "github.com/luxfi/rollupvm"
	"github.com/luxfi/rollupvm/api/server"
	"github.com/luxfi/rollupvm/vms/rollupvm"
	"github.com/luxfi/rollupvm/vms/rollupvm/config"
	"github.com/luxfi/rollupvm/vms/rollupvm/ledger"
	"github.com/luxfi/rollupvm/vms/tracedvm"
)

const (
	// APIBase and MetricsBase are mounted under /ext.
	APIBase     = "rollup"
	MetricsBase = "metrics"

	shutdownTimeout = 10 * time.Second
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Runs a rollup VM backed by an in-memory ledger",
		RunE:  runFunc,
	}
	flags := c.Flags()
	AddFlags(flags)
	return c
}

func runFunc(c *cobra.Command, args []string) error {
	cfg, err := ParseFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	runtimeConfig, err := config.ParseConfig(cfg.Config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", runtimeConfig.ListenAddress)
	if err != nil {
		return err
	}
	return Run(ctx, log.NewLogger("rollupvm"), cfg, listener)
}

// Run serves a freshly initialized VM on listener until ctx is cancelled.
func Run(ctx context.Context, logger log.Logger, cfg *Config, listener net.Listener) error {
	l := ledger.NewMemory()
	if err := cfg.Fund(l); err != nil {
		_ = listener.Close()
		return err
	}

	registry := metric.NewRegistry()
	apiServer, err := server.New(
		logger,
		listener,
		cfg.AllowedOrigins,
		cfg.AllowedHosts,
		shutdownTimeout,
		registry,
		server.HTTPConfig{
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       time.Minute,
		},
	)
	if err != nil {
		_ = listener.Close()
		return err
	}

	// Spans go to the global provider, a no-op unless the host installs one.
	factory := &rollupvm.Factory{
		Ledger: tracedvm.NewLedger(l, tracedvm.WrapTracer(otel.Tracer("rollupvm"))),
	}
	vm, err := factory.New(logger)
	if err != nil {
		_ = listener.Close()
		return err
	}
	if err := vm.Initialize(ctx, &luxvm.Config{
		ChainID:   ids.Empty,
		NetworkID: cfg.NetworkID,
		DB:        memdb.New(),
		Genesis:   cfg.Genesis,
		Config:    cfg.Config,
		Metrics:   registry,
	}); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to initialize vm: %w", err)
	}
	defer func() {
		if err := vm.Shutdown(context.Background()); err != nil {
			logger.Warn("failed to shutdown vm", log.Err(err))
		}
	}()

	if err := serve(ctx, vm, apiServer, registry); err != nil {
		_ = listener.Close()
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("serving rollup api",
			log.Stringer("address", apiServer.Addr()),
		)
		if err := apiServer.Dispatch(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return apiServer.Shutdown()
	})
	return g.Wait()
}

func serve(ctx context.Context, vm luxvm.VM, apiServer *server.Server, registry metric.Registry) error {
	if err := vm.SetState(ctx, luxvm.NormalOp); err != nil {
		return err
	}
	handlers, err := vm.CreateHandlers(ctx)
	if err != nil {
		return err
	}
	for extension, handler := range handlers {
		if err := apiServer.AddRoute(handler, APIBase, extension); err != nil {
			return err
		}
	}
	return apiServer.AddRoute(
		metric.HTTPHandler(registry, metric.HTTPHandlerOpts{}),
		MetricsBase,
		"",
	)
}
