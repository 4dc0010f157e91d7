package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/scribeapp/scribe-web/internal/config"
	"github.com/scribeapp/scribe-web/internal/web"
	"github.com/scribeapp/scribe-web/pkg/upload"
	"github.com/scribeapp/scribe-web/pkg/upstream"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web frontend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to scribe.json")
	return cmd
}

func serve(configPath string) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	api, err := upstream.New(cfg.UpstreamURL, upstream.WithLogger(logger))
	if err != nil {
		return err
	}

	opts := []web.ServerOption{web.WithLogger(logger)}
	if cfg.Upload.Bucket != "" {
		store, err := uploadStore(cfg)
		if err != nil {
			return err
		}
		opts = append(opts, web.WithUploadStore(store))
	}

	srv, err := web.NewServer(cfg, api, opts...)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "upstream", cfg.UpstreamURL)
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

func uploadStore(cfg *config.Config) (upload.Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)
	return upload.NewS3Store(client, cfg.Upload.Bucket, cfg.Upload.Prefix, cfg.Upload.PublicBaseURL, cfg.Upload.MaxFileSize), nil
}
