package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/hostdom/internal/config"
	"github.com/vango-dev/hostdom/pkg/journal"
	"github.com/vango-dev/hostdom/pkg/server"
	"github.com/vango-dev/hostdom/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		configDir string
		port      int
		host      string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the counter app to native hosts",
		Long: `Serve the counter app to native hosts over WebSocket.

Settings come from hostdom.json when present. Hosts connect to
ws://<host>:<port>/host, metrics are served on /metrics.

Examples:
  hostdom serve
  hostdom serve --port=9000
  hostdom serve --config=./app --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configDir, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, verbose)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config", "c", ".", "Directory containing hostdom.json")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from hostdom.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from hostdom.json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	srv, err := buildServer(cfg)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printBanner()
	fmt.Println("  serve")
	fmt.Println()
	success("Listening on ws://%s%s", cfg.Address(), cfg.Server.Path)
	if cfg.Telemetry.Metrics {
		info("Metrics on http://%s/metrics", cfg.Address())
	}
	if !cfg.Journal.ArchiveOnClose {
		info("Journals are kept in memory only")
	}
	fmt.Println()

	return srv.Run(ctx)
}

// buildServer translates hostdom.json into a server.
func buildServer(cfg *config.Config) (*server.Server, error) {
	types, err := cfg.LoadTypes()
	if err != nil {
		return nil, err
	}

	sc := server.DefaultConfig().
		WithAddress(cfg.Address()).
		WithPath(cfg.Server.Path).
		WithHeartbeat(cfg.HeartbeatInterval())
	sc.ReadBufferSize = cfg.Server.ReadBufferSize
	sc.WriteBufferSize = cfg.Server.WriteBufferSize
	sc.HandshakeTimeout = cfg.HandshakeTimeout()
	sc.WriteTimeout = cfg.WriteTimeout()
	sc.HistorySize = cfg.Session.HistorySize
	sc.RootTag = cfg.Session.RootTag
	if len(cfg.Server.AllowedOrigins) > 0 {
		sc.CheckOrigin = server.AllowOrigins(cfg.Server.AllowedOrigins...)
	}

	opts := []server.Option{
		server.WithTypeTable(types),
		server.WithDiffStrategy(cfg.DiffStrategy()),
	}
	if cfg.Telemetry.Metrics {
		m := telemetry.NewMetrics(telemetry.WithNamespace(cfg.Telemetry.Namespace))
		opts = append(opts, server.WithMetrics(m))
	}
	if cfg.Telemetry.Tracing {
		opts = append(opts, server.WithTracer(otel.Tracer(cfg.Telemetry.TracerName)))
	}
	if cfg.Journal.ArchiveOnClose {
		sink, err := archiveSink(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, server.WithArchiveSink(sink))
	}

	return server.New(sc, counterApp, opts...), nil
}

// archiveSink prefers S3 when a bucket is configured.
func archiveSink(cfg *config.Config) (journal.Sink, error) {
	if cfg.Journal.S3Bucket == "" {
		dir := cfg.Journal.Dir
		if cfg.Dir() != "" && !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.Dir(), dir)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		warn("Archiving journals to %s", dir)
		return journal.DirSink{Dir: dir}, nil
	}

	client, err := newS3Client()
	if err != nil {
		return nil, err
	}
	warn("Archiving journals to s3://%s/%s", cfg.Journal.S3Bucket, cfg.Journal.S3Prefix)
	return &journal.S3Sink{
		Client: client,
		Bucket: cfg.Journal.S3Bucket,
		Prefix: cfg.Journal.S3Prefix,
	}, nil
}

// newS3Client builds a client from the standard AWS environment
// variables. AWS_ENDPOINT_URL points it at an S3-compatible store.
func newS3Client() (*s3.Client, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		return nil, fmt.Errorf("journal.s3Bucket is set but AWS_REGION is not")
	}

	opts := s3.Options{Region: region}
	if id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"); id != "" && secret != "" {
		creds := aws.Credentials{
			AccessKeyID:     id,
			SecretAccessKey: secret,
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "Environment",
		}
		opts.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil }))
	}
	if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts), nil
}
