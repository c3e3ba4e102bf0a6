package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/internal/metrics"
	"github.com/dgnsrekt/readaloud/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

var (
	allowAnyOrigin bool

	serveCmd = &cobra.Command{
		Use:     "serve [SOURCE]",
		Short:   "Control playback over HTTP",
		Long:    paragraph(fmt.Sprintf("\n%s a remote control API with a websocket event stream and Prometheus metrics. An optional source preloads the text.", keyword("Serve"))),
		Example: paragraph("readaloud serve\nreadaloud serve --listen :8377 notes.md"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runServe,
	}
)

func init() {
	serveCmd.Flags().String("listen", "", "address to listen on")
	serveCmd.Flags().BoolVar(&allowAnyOrigin, "allow-any-origin", false, "accept websocket connections from any origin")
	_ = viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New("readaloud", reg)

	logger := log.Default().WithPrefix("serve")
	ctrl, err := newController(log.Default(), m)
	if err != nil {
		return err
	}

	if len(args) > 0 || fromClipboard {
		arg, err := sourceArg(args)
		if err != nil {
			return err
		}
		_, text, err := loadText(ctx, arg)
		if err != nil {
			return err
		}
		ctrl.SetText(text)
	}

	opts := []server.Option{server.WithLogger(logger), server.WithMetrics(m.Handler())}
	if allowAnyOrigin {
		opts = append(opts, server.WithAllowAnyOrigin())
	}
	srv := server.New(ctrl, cfg.Playback(), opts...)

	httpSrv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", cfg.Listen)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	ctrl.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unable to shut down: %w", err)
	}
	srv.Wait()
	return nil
}
