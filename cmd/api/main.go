package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/empresa-minera/monitor/internal/auth"
	"github.com/empresa-minera/monitor/internal/config"
	"github.com/empresa-minera/monitor/internal/httpapi"
	"github.com/empresa-minera/monitor/internal/obs"
	"github.com/empresa-minera/monitor/internal/readings"
	"github.com/empresa-minera/monitor/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	configPath := flag.String("config", os.Getenv("MONITOR_CONFIG"), "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.TokenSecret == "" {
		log.Fatal("missing signing secret: set MONITOR_AUTH_SECRET")
	}
	if cfg.DatabaseDSN == "" {
		log.Fatal("missing database DSN: set MONITOR_PG_DSN")
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	authSvc, err := auth.NewService(auth.NewPGStore(db), cfg.TokenSecret,
		auth.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	st := stream.New()
	readingsSvc, err := readings.NewService(readings.NewPGStore(db),
		readings.WithPublisher(httpapi.ReadingPublisher{Stream: st}))
	if err != nil {
		log.Fatalf("readings service: %v", err)
	}

	api := httpapi.New(httpapi.Options{
		Auth:            authSvc,
		Readings:        readingsSvc,
		Stream:          st,
		ReadyProbe:      httpapi.ReadyProbe{DB: db},
		Version:         version,
		Production:      cfg.Production,
		CORSOrigin:      cfg.CORSOrigin,
		LoginRateLimit:  cfg.LoginRateLimit,
		LoginRateWindow: cfg.LoginRateWindow,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting monitor-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = db.Close()
	log.Println("Stopped")
}
