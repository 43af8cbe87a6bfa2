package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harborlabs/boost/internal/boost/httpfront"
	"github.com/harborlabs/boost/internal/boost/mapper"
	"github.com/harborlabs/boost/internal/boost/modules"
	"github.com/harborlabs/boost/internal/boost/sessionregistry"
	"github.com/harborlabs/boost/internal/config"
	"github.com/harborlabs/boost/internal/logging"
)

// ServeCmd starts the HTTP gateway. It is also the root command's default
// action, so `boost` and `boost serve` are equivalent.
func ServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, cfg)
		},
	}
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	logging.Infof("boost: %d backend(s) configured, modules: %s", len(cfg.Backends), strings.Join(modules.List(), ", "))

	m := mapper.New(cfg)
	sessions := sessionregistry.New()
	front := httpfront.New(cfg, m, sessions)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      httpfront.NewRouter(front),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming responses (SSE/chat-completions) must not be capped
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logging.Info("boost: shutdown signal received")
		case <-ctx.Done():
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Errorf("boost: shutdown: %v", err)
		}
	}()

	logging.Infof("boost: listening on http://%s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("boost: serve: %w", err)
	}
	return nil
}
