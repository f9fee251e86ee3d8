// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/robustlab/smoothing-service/internal/cache"
	"github.com/robustlab/smoothing-service/internal/classifier"
	"github.com/robustlab/smoothing-service/internal/config"
	"github.com/robustlab/smoothing-service/internal/handler"
	"github.com/robustlab/smoothing-service/internal/metrics"
	"github.com/robustlab/smoothing-service/internal/middleware"
	"github.com/robustlab/smoothing-service/internal/smoothing"
)

const serviceName = "smoothing-service"

func main() {
	// Parse command-line flags
	port := flag.Int("port", 0, "HTTP API port (default: 8080)")
	modelPath := flag.String("model", "", "Path to ONNX model file (default: classifier.onnx)")
	redisAddr := flag.String("redis", "", "Redis address (default: localhost:6379)")
	metricsPort := flag.Int("metrics", 0, "Prometheus metrics port (default: 9100)")
	configFile := flag.String("config", "", "Path to config file (optional)")
	useMock := flag.Bool("mock", false, "Use mock classifier (for testing)")
	flag.Parse()

	// Load configuration from file and environment
	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadWithConfigFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override with flags if provided
	if *port > 0 {
		cfg.Port = *port
	}
	if *modelPath != "" {
		cfg.Model = *modelPath
	}
	if *redisAddr != "" {
		cfg.Redis = *redisAddr
	}
	if *metricsPort > 0 {
		cfg.MetricsPort = *metricsPort
	}
	if *useMock {
		cfg.UseMockClassifier = true
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting %s...", serviceName)
	log.Printf("Configuration: port=%d, model=%s, redis=%s, metrics=%d, otel=%v",
		cfg.Port, cfg.Model, cfg.Redis, cfg.MetricsPort, cfg.OTELEnabled)
	log.Printf("Smoothing: sample_size=%d, scale=%g, alpha=%g, classes=%d",
		cfg.SampleSize, cfg.Scale, cfg.Alpha, cfg.NumClasses)

	// Initialize OpenTelemetry tracer
	var tracerShutdown func(context.Context) error
	if cfg.OTELEnabled {
		tracerShutdown, err = initTracer(cfg.OTELEndpoint)
		if err != nil {
			log.Printf("Warning: Failed to initialize tracer: %v", err)
		} else {
			log.Printf("OpenTelemetry tracing enabled (endpoint: %s)", cfg.OTELEndpoint)
		}
	}

	// Load the base classifier
	var clf classifier.Classifier
	if cfg.UseMockClassifier {
		log.Printf("Using mock classifier")
		clf = classifier.NewMock(cfg.NumClasses)
	} else {
		log.Printf("Loading ONNX model from %s...", cfg.Model)
		clf, err = classifier.NewONNX(cfg.Model, int64(cfg.InputSize), int64(cfg.NumClasses))
		if err != nil {
			log.Fatalf("Failed to load ONNX model: %v", err)
		}
		log.Printf("ONNX model loaded successfully")
	}
	defer clf.Close()

	// Wrap the classifier with randomized smoothing
	smoother, err := smoothing.New(clf, smoothing.Config{
		SampleSize: cfg.SampleSize,
		Scale:      cfg.Scale,
		Alpha:      cfg.Alpha,
	})
	if err != nil {
		log.Fatalf("Failed to create smoother: %v", err)
	}

	// Initialize Redis cache (optional)
	var cacheClient *cache.Cache
	if cfg.Redis != "" {
		log.Printf("Connecting to Redis at %s...", cfg.Redis)
		cacheClient, err = cache.New(cfg.Redis)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v (continuing without cache)", err)
		} else {
			defer cacheClient.Close()
			log.Printf("Redis connected successfully")
		}
	}

	// Serving flag shared between the health endpoints and shutdown
	var ready atomic.Bool

	// Start HTTP server for metrics and health checks
	metricsServer := startMetricsServer(cfg.MetricsPort, &ready)

	// Build the API router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	if cfg.OTELEnabled {
		router.Use(otelgin.Middleware(serviceName))
	}

	h := handler.New(smoother, cacheClient)
	h.Register(router)

	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	ready.Store(true)
	metrics.SetHealthy()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down gracefully...", sig)

		ready.Store(false)
		metrics.SetUnhealthy()

		// Give time for load balancers to detect unhealthy status
		time.Sleep(5 * time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		apiServer.Shutdown(ctx)
		metricsServer.Shutdown(ctx)

		if tracerShutdown != nil {
			tracerShutdown(ctx)
		}
	}()

	log.Printf("API server listening on %s", apiServer.Addr)
	log.Printf("%s is ready to accept requests", serviceName)

	if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to serve: %v", err)
	}

	log.Printf("Server shutdown complete")
}

func startMetricsServer(port int, ready *atomic.Bool) *http.Server {
	mux := http.NewServeMux()

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Service Unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness check (same as healthz for now)
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Not Ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Ready"))
	})

	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		log.Printf("HTTP server listening on %s (metrics, health)", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	return server
}

func initTracer(endpoint string) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	var err error

	if endpoint != "" {
		// For now, use stdout exporter as OTLP requires more setup
		// In production, use: otlptrace.New(ctx, otlptracegrpc.NewClient(...))
		log.Printf("Note: Using stdout trace exporter (OTLP endpoint: %s)", endpoint)
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	} else {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Create resource with service information
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create tracer provider
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	// Set global tracer provider
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
