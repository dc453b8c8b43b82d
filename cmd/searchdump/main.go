// Command searchdump parses recorded search replies and prints the response
// trees.
//
// Usage:
//
//	searchdump [flags] SOURCE...
//
// A SOURCE is a local path, "-" for stdin, s3://bucket/key or
// minio://host:port/bucket/key. S3 credentials come from the default AWS
// chain; MinIO credentials from MINIO_ACCESS_KEY and MINIO_SECRET_KEY
// (MINIO_SECURE=true enables TLS).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/searchtree"
	"github.com/hupe1980/searchtree/archive"
	minioarchive "github.com/hupe1980/searchtree/archive/minio"
	s3archive "github.com/hupe1980/searchtree/archive/s3"
	"github.com/hupe1980/searchtree/codec"
	"github.com/hupe1980/searchtree/model"
	"github.com/hupe1980/searchtree/prommetrics"
)

var (
	configPath  = flag.String("config", "", "YAML configuration file")
	encoding    = flag.String("encoding", "", "content encoding of the replies (overrides config)")
	codecName   = flag.String("codec", "json-indent", "output codec: "+strings.Join(codec.Names(), ", "))
	serviceID   = flag.String("service", "", "service id to tag responses with (overrides config)")
	metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address and wait for a signal after dumping")
	cacheBytes  = flag.Int64("cache-bytes", 64<<20, "bytes of remote replies kept in memory across sources")
)

// stores reuses one caching store per remote bucket.
var stores = map[string]archive.Store{}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("searchdump failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := searchtree.Config{}
	if *configPath != "" {
		var err error
		if cfg, err = searchtree.LoadConfigFile(*configPath); err != nil {
			return err
		}
	}
	if *encoding != "" {
		cfg.ContentEncoding = *encoding
	}
	if *serviceID != "" {
		cfg.ServiceID = *serviceID
	}

	c, ok := codec.ByName(*codecName)
	if !ok {
		return fmt.Errorf("unknown codec %q", *codecName)
	}

	reg := prometheus.NewRegistry()
	p, err := searchtree.NewFromConfig(cfg,
		searchtree.WithMetricsCollector(prommetrics.NewCollector(reg, "searchdump")))
	if err != nil {
		return err
	}

	for _, src := range flag.Args() {
		resp, err := parse(ctx, p, src)
		if err != nil {
			return fmt.Errorf("%s: %w", src, err)
		}
		out, err := c.Marshal(resp.Snapshot())
		resp.Free()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(os.Stdout, string(out)); err != nil {
			return err
		}
	}

	if *metricsAddr == "" {
		return nil
	}
	return serveMetrics(ctx, reg)
}

func parse(ctx context.Context, p *searchtree.Parser, src string) (*model.Response, error) {
	if src == "-" {
		return p.Parse(ctx, os.Stdin)
	}

	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" {
		store := archive.NewLocalStore(filepath.Dir(src))
		return p.ParseArchived(ctx, store, filepath.Base(src))
	}

	key := strings.TrimPrefix(u.Path, "/")
	switch u.Scheme {
	case "s3":
		store, ok := stores[u.Scheme+"://"+u.Host]
		if !ok {
			awsCfg, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, err
			}
			store = archive.NewCachingStore(s3archive.NewStore(awss3.NewFromConfig(awsCfg), u.Host, ""), *cacheBytes, nil)
			stores[u.Scheme+"://"+u.Host] = store
		}
		return p.ParseArchived(ctx, store, key)
	case "minio":
		bucket, name, ok := strings.Cut(key, "/")
		if !ok {
			return nil, fmt.Errorf("minio source needs bucket and key: %s", src)
		}
		id := u.Scheme + "://" + u.Host + "/" + bucket
		store, ok := stores[id]
		if !ok {
			client, err := minio.New(u.Host, &minio.Options{
				Creds:  credentials.NewEnvMinio(),
				Secure: os.Getenv("MINIO_SECURE") == "true",
			})
			if err != nil {
				return nil, err
			}
			store = archive.NewCachingStore(minioarchive.NewStore(client, bucket, ""), *cacheBytes, nil)
			stores[id] = store
		}
		return p.ParseArchived(ctx, store, name)
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

func serveMetrics(ctx context.Context, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving metrics", "addr", *metricsAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
