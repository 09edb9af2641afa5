// vspsim runs the Sage Pay VSP simulator as a standalone HTTP server, for
// manual testing and local development against a gateway that always
// answers.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"github.com/alovak/sagepay/gateway/gatewaytest"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	addr := getenv("VSPSIM_ADDR", "localhost:8480")
	sim := gatewaytest.NewSimulator(logger)

	srv := &http.Server{
		Addr:    addr,
		Handler: sim.Handler(),
	}

	go func() {
		logger.Info("vsp simulator started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("starting http server", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
