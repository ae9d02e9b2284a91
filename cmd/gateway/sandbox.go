package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/bankgate/internal/gateway/app"
	"github.com/aussiebroadwan/bankgate/internal/sandbox"
	"github.com/aussiebroadwan/bankgate/pkg/slogx"
	"github.com/spf13/cobra"
)

var (
	sandboxPort      int
	sandboxPublicURL string
)

func sandboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run the sandbox bank on its own",
		Long: `Run the sandbox bank on its own.

The sandbox speaks the rest protocol family and confirms SCA with a time
based TAN. Its secret comes from GATEWAY_SANDBOX_TOTP_SECRET, or is
generated and logged at startup.

Examples:
  gateway sandbox --port 9090
  gateway sandbox --port 9090 --public-url https://sandbox.example.com`,
		Args: cobra.NoArgs,
		RunE: runSandbox,
	}
	cmd.Flags().IntVar(&sandboxPort, "port", 9090, "listen port")
	cmd.Flags().StringVar(&sandboxPublicURL, "public-url", "", "browser facing base URL (default http://localhost:PORT)")
	return cmd
}

func runSandbox(cmd *cobra.Command, args []string) error {
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg, "bankgate-sandbox")

	publicURL := sandboxPublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("http://localhost:%d", sandboxPort)
	}

	bank, err := sandbox.New(sandbox.Config{
		BaseURL:    publicURL,
		TOTPSecret: cfg.SandboxTOTPSecret,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	if cfg.SandboxTOTPSecret == "" {
		logger.Warn("sandbox TAN secret generated", "totp_secret", bank.TOTPSecret())
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", sandboxPort),
		Handler:           slogx.HTTPMiddleware(logger)(bank.Handler()),
		ReadHeaderTimeout: 3 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.ListenAndServe()
	}()
	logger.Info("sandbox bank starting", "port", sandboxPort, "public_url", publicURL)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGracePeriod)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("sandbox bank stopped")
	return nil
}
