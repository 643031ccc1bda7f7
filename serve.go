package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"selection/catalog"
	"selection/common"
	"selection/config"
	"selection/logic"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath string
	envFile    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC and HTTP servers",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "selection.yaml", "Path to the YAML config file")
	serveCmd.Flags().StringVar(&envFile, "env-file", ".env", "Optional .env file loaded before env overrides")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err = common.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL,
		catalog.WithTimeout(cfg.CatalogTimeout()),
		catalog.WithLogger(logger.Named("catalog")),
	)
	store := logic.NewSessionStore(logger,
		logic.WithCatalog(catalogClient),
		logic.WithMinQueryLength(cfg.Catalog.MinQueryLength),
	)
	srv := newServer(store)

	return serve(ctx, cfg.Server.GRPCPort, cfg.Server.HTTPPort, cfg.Server.CORSOrigins, srv)
}

// serve runs the gRPC server and, when httpPort is set, the HTTP facade
// until ctx is cancelled or one of them fails.
func serve(ctx context.Context, grpcPort, httpPort string, origins []string, srv *server) error {
	var httpLis net.Listener
	if httpPort != "" {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", httpPort))
		if err != nil {
			return fmt.Errorf("failed to listen on port %s: %w", httpPort, err)
		}
		httpLis = lis
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return common.RunServer(ctx, common.ServerConfig{Domain: Domain, Port: grpcPort}, logger,
			func(s *grpc.Server) {
				common.RegisterSelectionServer(s, srv)
			})
	})

	if httpLis != nil {
		httpServer := &http.Server{
			Handler:           newHTTPHandler(srv, origins),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("http server started", zap.String("addr", httpLis.Addr().String()))
			if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
