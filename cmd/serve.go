package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	gcsclient "cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/silkyrich/dexguide-edge/internal/analytics"
	"github.com/silkyrich/dexguide-edge/internal/api"
	"github.com/silkyrich/dexguide-edge/internal/cache"
	"github.com/silkyrich/dexguide-edge/internal/card"
	"github.com/silkyrich/dexguide-edge/internal/config"
	"github.com/silkyrich/dexguide-edge/internal/edge"
	"github.com/silkyrich/dexguide-edge/internal/logging"
	"github.com/silkyrich/dexguide-edge/internal/metrics"
	"github.com/silkyrich/dexguide-edge/internal/pokeapi"
	"github.com/silkyrich/dexguide-edge/internal/preview"
	"github.com/silkyrich/dexguide-edge/internal/storage"
	"github.com/silkyrich/dexguide-edge/internal/storage/gcs"
	"github.com/silkyrich/dexguide-edge/internal/storage/memory"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the preview edge in front of the static site.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	upstreamCache := cache.New(true)
	client := pokeapi.NewClient(pokeapi.Options{
		BaseURL:           cfg.Upstream.BaseURL,
		ArtworkBaseURL:    cfg.Upstream.ArtworkBaseURL,
		Timeout:           cfg.UpstreamTimeout(),
		TTL:               cfg.UpstreamTTL(),
		RequestsPerMinute: cfg.Upstream.RequestsPerMinute,
	}, upstreamCache, logger)

	fonts, err := card.LoadFonts(cfg.Card.FontRegularPath, cfg.Card.FontBoldPath)
	if err != nil {
		return fmt.Errorf("load fonts: %w", err)
	}

	images, err := newImageStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	sink, err := newSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	emitter := analytics.NewEmitter(sink, cfg.Analytics.BufferSize, logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := emitter.Close(closeCtx); err != nil {
			logger.Warn("analytics emitter close failed", zap.Error(err))
		}
	}()

	interceptor := edge.New(edge.Options{
		Next:        staticHandler(cfg.Server.StaticDir),
		Client:      client,
		Composer:    preview.NewComposer(client, cfg.Site),
		HTML:        preview.NewHTMLRenderer(cfg.Site.Name, cfg.Site.RedirectDelaySeconds),
		Embed:       preview.NewEmbedRenderer(cfg.Site.URL, client),
		Cards:       card.NewRenderer(fonts, cfg.Site.Name, siteHost(cfg.Site.URL)),
		Images:      images,
		Emitter:     emitter,
		Logger:      logger,
		HTMLMaxAge:  cfg.Cache.HTMLMaxAgeSeconds,
		ImageMaxAge: cfg.Cache.ImageTTLSeconds,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewServer(interceptor, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("preview edge listening", zap.Int("port", cfg.Server.Port))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("preview edge stopped")
	return nil
}

// newImageStore picks the rendered-image tier backend: a GCS bucket when
// configured, in-memory otherwise.
func newImageStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Store, error) {
	if cfg.Cache.GCSBucket == "" {
		return memory.New(cfg.ImageTTL()), nil
	}
	client, err := gcsclient.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	store, err := gcs.New(client, gcs.Config{Bucket: cfg.Cache.GCSBucket})
	if err != nil {
		return nil, fmt.Errorf("create gcs store: %w", err)
	}
	logger.Info("image cache backed by gcs", zap.String("bucket", cfg.Cache.GCSBucket))
	return store, nil
}

// newSink builds the configured analytics sink.
func newSink(ctx context.Context, cfg config.Config, logger *zap.Logger) (analytics.Sink, error) {
	switch cfg.Analytics.Sink {
	case "pubsub":
		sink, err := analytics.NewPubSubSink(ctx, cfg.Analytics.PubSubProject, cfg.Analytics.PubSubTopic)
		if err != nil {
			return nil, fmt.Errorf("create pubsub sink: %w", err)
		}
		return sink, nil
	case "postgres":
		sink, err := analytics.NewPostgresSink(ctx, cfg.Analytics.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("create postgres sink: %w", err)
		}
		return sink, nil
	default:
		return analytics.NewLogSink(logger), nil
	}
}

// staticHandler serves the static asset tree. Paths with no matching file
// fall back to index.html so client-side routes deep-link correctly when a
// human hits them directly.
func staticHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}

func siteHost(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return siteURL
	}
	return u.Host
}
