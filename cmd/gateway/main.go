// Command gateway runs the storefront REST gateway in front of a
// multi-tenant Odoo backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/ars-4/grocer-middleware/internal/config"
	"github.com/ars-4/grocer-middleware/internal/logging"
	"github.com/ars-4/grocer-middleware/internal/metrics"
	"github.com/ars-4/grocer-middleware/internal/middleware"
	"github.com/ars-4/grocer-middleware/internal/odoo"
	"github.com/ars-4/grocer-middleware/internal/otp"
	"github.com/ars-4/grocer-middleware/internal/storefront"
)

func main() {
	configFile := flag.String("config", "", "optional YAML config file overlaying the environment")
	flag.Parse()

	// .env is a local development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *configFile != "" {
		if err := cfg.ApplyFile(*configFile); err != nil {
			log.Fatalf("apply config file: %v", err)
		}
	}

	logger := logging.New("gateway", cfg.LogLevel, cfg.LogJSON)
	m := metrics.New("grocer_gateway")

	odooClient, err := odoo.NewClient(odoo.Config{
		HostPattern: cfg.OdooHostPattern,
		Timeout:     cfg.OdooTimeout,
		Metrics:     m,
	})
	if err != nil {
		log.Fatalf("create odoo client: %v", err)
	}

	otpClient, err := otp.NewClient(otp.ClientConfig{
		BaseURL: cfg.OTPServiceURL,
		Timeout: cfg.OTPTimeout,
	})
	if err != nil {
		log.Fatalf("create otp client: %v", err)
	}

	service := storefront.New(odooClient, otpClient, logger, storefront.Config{
		SignupStateID:   cfg.SignupStateID,
		SignupCountryID: cfg.SignupCountryID,
	})

	router := mux.NewRouter()
	router.Use(middleware.NewCORSMiddleware(cfg.AllowedOrigins).Handler)
	router.Use(middleware.Tracing(logger))
	router.Use(middleware.Metrics("gateway", m))
	router.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger).Handler)

	router.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/").Subrouter()
	api.Use(middleware.OdooAuth(odooClient, logger))
	service.RegisterRoutes(api)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Infof("gateway listening on :%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Infof("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"healthy","service":"gateway","timestamp":%q}`, time.Now().Format(time.RFC3339))
}
