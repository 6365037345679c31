package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mirkobrombin/go-protected/v1/lock"
	"github.com/mirkobrombin/go-protected/v1/metrics"
	"github.com/mirkobrombin/go-protected/v1/protected"
)

var (
	procs       = flag.Int("procs", runtime.GOMAXPROCS(0)*4, "Number of concurrent goroutines")
	duration    = flag.Duration("duration", 10*time.Second, "Duration of the stress test")
	lockKind    = flag.String("lock", "default", "Lock kind: default, errorcheck, fast or redis")
	redisAddr   = flag.String("redis-addr", "localhost:6379", "Redis address for -lock=redis")
	metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	traceOut    = flag.Bool("trace", false, "Print OpenTelemetry spans to stdout")
)

// account is updated as a whole; Debit and Credit must always balance.
type account struct {
	Debit  int64
	Credit int64
	Ops    int64
}

var ops = protected.FieldOf(func(a *account) *int64 { return &a.Ops })

func main() {
	flag.Parse()
	ctx := context.Background()

	if *traceOut {
		exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			log.Fatal(err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		defer func() { _ = tp.Shutdown(ctx) }()
		otel.SetTracerProvider(tp)
	}

	reg := metrics.NewRegistry()
	metrics.RegisterLockMetrics(reg)
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			log.Printf("Serving metrics on %s", *metricsAddr)
			log.Println(http.ListenAndServe(*metricsAddr, mux))
		}()
	}

	factory, err := lockFactory(ctx)
	if err != nil {
		log.Fatal(err)
	}

	acct := protected.New(account{},
		protected.WithName("account"),
		protected.WithLocker(factory),
		protected.WithMetrics(),
	)
	journal := protected.New([]int64(nil), protected.WithName("journal"), protected.WithMetrics())

	log.Printf("Running %d goroutines for %v with %s lock (platform default: %s)", *procs, *duration, *lockKind, lock.Platform)
	runCtx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	start := time.Now()
	g, gctx := errgroup.WithContext(runCtx)
	for p := 0; p < *procs; p++ {
		g.Go(func() error {
			for i := int64(0); ; i++ {
				select {
				case <-gctx.Done():
					return nil
				default:
				}
				amount := int64(p) + i%7
				acct.Write(func(a *account) {
					a.Debit += amount
					a.Credit += amount
					a.Ops++
				})
				if err := protected.Read(acct, func(a account) error {
					if a.Debit != a.Credit {
						return fmt.Errorf("torn read: debit %d credit %d", a.Debit, a.Credit)
					}
					return nil
				}); err != nil {
					return err
				}
				if i%1000 == 0 {
					protected.Append(journal, ops.Get(acct))
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Stress test failed: %v", err)
	}

	final := acct.Get()
	elapsed := time.Since(start)
	log.Printf("Stress test completed: %d writes in %v (%.0f ops/s), %d journal entries",
		final.Ops, elapsed, float64(final.Ops)/elapsed.Seconds(), protected.Len(journal))
	if final.Debit != final.Credit {
		log.Fatalf("Unbalanced account: %+v", final)
	}
}

func lockFactory(ctx context.Context) (lock.Factory, error) {
	switch *lockKind {
	case "default":
		return lock.New, nil
	case "errorcheck":
		return func() lock.Locker { return lock.NewErrorCheck("account") }, nil
	case "fast":
		return func() lock.Locker { return lock.NewFast() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return func() lock.Locker {
			return lock.NewRedis(client, "protected-stress:account", lock.WithContext(ctx))
		}, nil
	default:
		return nil, fmt.Errorf("unknown lock kind %q", *lockKind)
	}
}
