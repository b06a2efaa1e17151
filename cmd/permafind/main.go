package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saket-vr/permafind/internal/analytics"
	"github.com/saket-vr/permafind/internal/cache"
	"github.com/saket-vr/permafind/internal/corpus"
	"github.com/saket-vr/permafind/internal/index"
	"github.com/saket-vr/permafind/internal/query"
	"github.com/saket-vr/permafind/pkg/config"
	apperrors "github.com/saket-vr/permafind/pkg/errors"
	"github.com/saket-vr/permafind/pkg/health"
	"github.com/saket-vr/permafind/pkg/kafka"
	"github.com/saket-vr/permafind/pkg/logger"
	"github.com/saket-vr/permafind/pkg/metrics"
	"github.com/saket-vr/permafind/pkg/postgres"
	pkgredis "github.com/saket-vr/permafind/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	corpusPath := flag.String("corpus", "", "path to delimited corpus file (overrides config)")
	source := flag.String("source", "file", "corpus source: file or postgres")
	queriesPath := flag.String("queries", "", "file with one query per line, executed concurrently")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *corpusPath != "" {
		cfg.Corpus.Path = *corpusPath
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	checker := health.NewChecker()
	if cfg.Metrics.Enabled {
		m = metrics.New()
		shutdown := metrics.StartServer(cfg.Metrics.Port, checker)
		defer shutdown(context.Background())
	}

	src, cleanup, err := newSource(cfg, *source, m, checker)
	if err != nil {
		slog.Error("corpus source unavailable", "source", *source, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	builder := index.NewBuilder(m)
	if err := src.Read(ctx, func(doc corpus.Document) error {
		builder.AddDocument(doc.ID, doc.Tokens)
		return nil
	}); err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}
	ix := builder.Build()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d docs, %d terms", ix.Docs(), ix.Terms()),
		}
	})

	engine := query.New(ix, m)

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis, ix.Fingerprint(), m)
			defer func() {
				hits, misses := queryCache.Stats()
				slog.Info("query cache stats", "hits", hits, "misses", misses)
			}()
			checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
				if err := redisClient.Ping(ctx); err != nil {
					return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
				}
				return health.ComponentHealth{Status: health.StatusUp}
			})
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.EventsTopic)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 1024)
		collector.Start(ctx)
		defer collector.Close()
	}

	run := newRunner(engine, queryCache, collector, cfg.Query.MaxTerms)

	switch {
	case *queriesPath != "":
		if err := runBatch(ctx, run, *queriesPath, cfg.Query.MaxConcurrentQueries); err != nil {
			slog.Error("batch run failed", "error", err)
			os.Exit(1)
		}
	case flag.NArg() > 0:
		result, err := run(ctx, flag.Args())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			if errors.Is(err, apperrors.ErrInvalidQuery) {
				os.Exit(2)
			}
			os.Exit(1)
		}
		printResult(result)
	default:
		runREPL(ctx, run)
	}
}

type runner func(ctx context.Context, terms []string) (*query.Result, error)

// newRunner wires the engine behind the optional cache and analytics
// collector. The cache's singleflight keeps concurrent identical queries
// from computing twice; the collector never blocks the query path.
func newRunner(
	engine *query.Engine,
	queryCache *cache.QueryCache,
	collector *analytics.Collector,
	maxTerms int,
) runner {
	return func(ctx context.Context, terms []string) (*query.Result, error) {
		if maxTerms > 0 && len(terms) > maxTerms {
			return nil, apperrors.Newf(apperrors.ErrInvalidQuery,
				"%d terms exceeds the limit of %d", len(terms), maxTerms)
		}
		start := time.Now()
		var result *query.Result
		var cacheHit bool
		var err error
		if queryCache != nil {
			result, cacheHit, err = queryCache.GetOrCompute(ctx, terms, func() (*query.Result, error) {
				return engine.Execute(ctx, terms)
			})
		} else {
			result, err = engine.Execute(ctx, terms)
		}
		if collector != nil {
			event := analytics.QueryEvent{
				Terms:     terms,
				Outcome:   query.OutcomeInvalid,
				CacheHit:  cacheHit,
				LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
				Timestamp: time.Now().UTC(),
			}
			if err == nil {
				event.Terms = result.Terms
				event.Outcome = result.Outcome()
				event.Hits = len(result.DocIDs)
			}
			collector.Track(event)
		}
		return result, err
	}
}

func runBatch(ctx context.Context, run runner, path string, concurrency int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading queries file: %w", err)
	}
	var queries [][]string
	for _, line := range strings.Split(string(data), "\n") {
		if terms := strings.Fields(line); len(terms) > 0 {
			queries = append(queries, terms)
		}
	}

	type outcome struct {
		result *query.Result
		err    error
	}
	outcomes := make([]outcome, len(queries))

	// The sealed index takes concurrent readers without locks; errgroup
	// just bounds the fan-out.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, terms := range queries {
		g.Go(func() error {
			result, err := run(gctx, terms)
			outcomes[i] = outcome{result: result, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, o := range outcomes {
		fmt.Printf("# %s\n", strings.Join(queries[i], " "))
		if o.err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", o.err)
			continue
		}
		printResult(o.result)
	}
	return nil
}

func runREPL(ctx context.Context, run runner) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(os.Stderr, "enter query terms, one query per line (ctrl-d to quit)")
	for {
		fmt.Fprint(os.Stderr, "> ")
		if !scanner.Scan() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		terms := strings.Fields(scanner.Text())
		if len(terms) == 0 {
			continue
		}
		result, err := run(ctx, terms)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		printResult(result)
	}
}

func printResult(result *query.Result) {
	for _, miss := range result.Misses {
		fmt.Fprintf(os.Stderr, "no match for %q (%s)\n", miss.Token, miss.Reason)
	}
	if len(result.DocIDs) == 0 {
		if len(result.Misses) == 0 {
			fmt.Fprintln(os.Stderr, "no documents matched")
		}
		return
	}
	for _, docID := range result.DocIDs {
		fmt.Println(docID)
	}
}

func newSource(
	cfg *config.Config,
	kind string,
	m *metrics.Metrics,
	checker *health.Checker,
) (corpus.Source, func(), error) {
	switch kind {
	case "postgres":
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
			if err := client.DB.PingContext(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
		return corpus.NewPostgresSource(client, cfg.Postgres), func() { client.Close() }, nil
	case "file":
		if cfg.Corpus.Path == "" {
			return nil, nil, fmt.Errorf("no corpus path given (use -corpus or the config file)")
		}
		return corpus.NewFileSource(cfg.Corpus, m), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown corpus source %q", kind)
	}
}
