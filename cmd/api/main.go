package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/assistant"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/config"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/httpapi"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/identity"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/interview"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/obs"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/store/blob"
	"github.com/anigokul432/ai-v2v-interviewer-backend/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Persistence. Without a DSN the service runs fully in memory, which is
	// enough for local development against the assistant gateway.
	var (
		userStore      identity.Store
		interviewStore interview.Store
		probe          httpapi.ReadyProbe
	)
	if cfg.DatabaseDSN != "" {
		pgStore, err := pg.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pgStore.Close()

		if cfg.UseS3Recordings() {
			blobs, err := blob.NewS3Store(context.Background(), blob.S3Config{
				Region:    cfg.S3Region,
				Endpoint:  cfg.S3Endpoint,
				Bucket:    cfg.S3Bucket,
				AccessKey: cfg.S3AccessKey,
				SecretKey: cfg.S3SecretKey,
			})
			if err != nil {
				log.Fatalf("s3: %v", err)
			}
			pgStore = pgStore.WithRecordingBlobs(blobs)
		}

		userStore = identity.NewPGStore(pgStore.DB())
		interviewStore = pgStore
		probe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		log.Println("no INTERVIEWER_PG_DSN set, using in-memory stores")
		userStore = identity.NewInMemory()
		interviewStore = interview.NewInMemory()
	}

	identityOpts := []identity.ServiceOption{
		identity.WithTokenTTL(cfg.TokenTTL),
	}
	if cfg.GoogleClientID != "" {
		identityOpts = append(identityOpts, identity.WithAssertionVerifier(
			identity.NewGoogleVerifier(cfg.GoogleClientID, 10*time.Second),
		))
	}
	identitySvc, err := identity.NewService(userStore, cfg.AuthSecret, identityOpts...)
	if err != nil {
		log.Fatalf("identity: %v", err)
	}

	gateway := assistant.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.GatewayTimeout)
	interviewSvc := interview.NewOrchestrator(interviewStore, userStore, gateway)

	api := httpapi.New(probe, version, identitySvc, interviewSvc)
	api.SetRateLimit(cfg.RateBurst, cfg.RatePerSec)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second, // assistant calls sit inside request handling
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting interviewer-api %s on %s", version, srv.Addr)

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
	log.Println("Stopped")
}
