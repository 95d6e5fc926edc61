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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/hearthledger-backend/internal/adapter/grpc"
	httpadapter "github.com/simaogato/hearthledger-backend/internal/adapter/http"
	"github.com/simaogato/hearthledger-backend/internal/app"
	"github.com/simaogato/hearthledger-backend/internal/config"
	"github.com/simaogato/hearthledger-backend/internal/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// 2. Storage and cascade lock
	repos, closeStorage, err := app.OpenRepositories(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage")
	}
	defer closeStorage()

	locker, closeLocker := app.OpenLocker(ctx, cfg, log)
	defer closeLocker()

	// 3. Services (use cases)
	services := app.NewServices(repos, locker, log)

	// 4. HTTP API
	gin.SetMode(gin.ReleaseMode)
	handler := httpadapter.NewHandler(
		services.Checkpoints,
		services.Transactions,
		services.Accounts,
		services.Workspaces,
		services.Dashboard,
		log,
	)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler, cfg.APIToken, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", httpServer.Addr).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to serve HTTP")
		}
	}()

	// 5. gRPC API
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.AuthInterceptor(cfg.APIToken),
			grpcadapter.LoggingInterceptor(log),
		),
	)
	grpcadapter.RegisterReconciliationServer(grpcServer, grpcadapter.NewServer(services.Checkpoints, log))
	reflection.Register(grpcServer)

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.WithError(err).Fatalf("failed to listen on %s", grpcAddr)
	}

	go func() {
		log.WithField("addr", grpcAddr).Info("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.WithError(err).Fatal("failed to serve gRPC")
		}
	}()

	// Graceful shutdown
	waitForShutdown(log, httpServer, grpcServer)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down both servers
func waitForShutdown(log logrus.FieldLogger, httpServer *http.Server, grpcServer *grpclib.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown incomplete")
	}

	grpcServer.GracefulStop()
	log.Info("servers stopped")
}
