// Command server hosts the three registration components (zaken, besluiten
// and documenten) behind one HTTP listener, together with the notification
// outbox worker and the inbound cloud event consumer.
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

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"zgw/internal/audittrail"
	"zgw/internal/authz"
	"zgw/internal/brc"
	"zgw/internal/catalogi"
	"zgw/internal/drc"
	"zgw/internal/mirror"
	"zgw/internal/notifications"
	"zgw/internal/platform/config"
	"zgw/internal/platform/db"
	"zgw/internal/platform/db/migrations"
	"zgw/internal/platform/httpserver"
	"zgw/internal/platform/kafka"
	"zgw/internal/platform/kafka/consumer"
	"zgw/internal/platform/logger"
	"zgw/internal/platform/metrics"
	"zgw/internal/platform/middleware"
	platformredis "zgw/internal/platform/redis"
	"zgw/internal/reference"
	"zgw/internal/zgwjwt"
	"zgw/internal/zrc"
	"zgw/pkg/domain"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	if err := migrations.Apply(ctx, conn); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	registry := reference.NewPostgresRegistry(conn)

	var redisClient *platformredis.Client
	cache := reference.Cache(reference.NewMemoryCache())
	if cfg.RedisURL != "" {
		redisClient, err = platformredis.New(config.RedisFromEnv())
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		cache = reference.NewRedisCache(redisClient, log)
	}
	resolver := reference.NewResolver(registry, log, reference.WithCache(cache))

	splitter := reference.NewSplitter(cfg.BaseURL + "/api/v1")
	authzSvc := authz.NewService(authz.NewPostgres(conn), log)
	jwtSvc := zgwjwt.NewService(authzSvc)
	catalog := catalogi.NewClient(resolver)
	syncer := mirror.NewSyncer(mirror.NewClient(registry, log, mirror.WithTimeout(cfg.PeerTimeout)), log)

	auditStore := audittrail.NewPostgres(conn)
	outbox := notifications.NewPostgres(conn)
	events := func(source string) *notifications.CloudEventEmitter {
		return notifications.NewCloudEventEmitter(cfg.CloudEventsEnabled, source, outbox, log)
	}

	zrcRecorder := audittrail.NewRecorder("ZRC", auditStore, log)
	zrcSvc := zrc.NewService(zrc.Deps{
		Store:    zrc.NewPostgres(conn),
		Authz:    authzSvc,
		Catalogi: catalog,
		Resolver: resolver,
		Splitter: splitter,
		Syncer:   syncer,
		Audit:    zrcRecorder,
		Notify:   notifications.NewEmitter(notifications.KanaalZaken, outbox, log),
		Events:   events(cfg.CloudEventsSource + ":zrc"),
		DB:       conn,
		Logger:   log,
	})

	brcRecorder := audittrail.NewRecorder("BRC", auditStore, log)
	brcSvc := brc.NewService(brc.Deps{
		Store:    brc.NewPostgres(conn),
		Authz:    authzSvc,
		Catalogi: catalog,
		Resolver: resolver,
		Splitter: splitter,
		Syncer:   syncer,
		Audit:    brcRecorder,
		Notify:   notifications.NewEmitter(notifications.KanaalBesluiten, outbox, log),
		Events:   events(cfg.CloudEventsSource + ":brc"),
		DB:       conn,
		Logger:   log,
	})

	backend := drc.DocumentBackend(drc.NewPostgresBackend(conn))
	if cfg.CMISEnabled {
		backend = drc.NewCMISBackend(backend)
	}
	drcRecorder := audittrail.NewRecorder("DRC", auditStore, log)
	drcSvc := drc.NewService(drc.Deps{
		Store:     drc.NewPostgres(conn),
		Backend:   backend,
		Authz:     authzSvc,
		Catalogi:  catalog,
		Splitter:  splitter,
		Audit:     drcRecorder,
		Notify:    notifications.NewEmitter(notifications.KanaalDocumenten, outbox, log),
		Events:    events(cfg.CloudEventsSource + ":drc"),
		ChunkSize: cfg.UploadChunkSize,
		DB:        conn,
		Logger:    log,
	})

	inbound := notifications.NewInbound(koppelaar{svc: zrcSvc}, log)

	m := metrics.New()
	router := chi.NewRouter()
	router.Use(middleware.RequestID, middleware.RequestTime, middleware.AuditToelichting)
	router.Use(middleware.Metrics(m, "zgw"))
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwtSvc, log))
		if cfg.RateLimit > 0 {
			limiter := middleware.Limiter(middleware.NewMemoryLimiter(cfg.RateLimit, cfg.RateLimitWindow))
			if redisClient != nil {
				limiter = middleware.NewRedisLimiter(redisClient, cfg.RateLimit, cfg.RateLimitWindow)
			}
			r.Use(middleware.RateLimit(limiter, log))
		}
		zrc.NewHandler(zrcSvc, zrcRecorder, splitter, log).Register(r)
		brc.NewHandler(brcSvc, brcRecorder, splitter, log).Register(r)
		drc.NewHandler(drcSvc, drcRecorder, splitter, log).Register(r)
		r.Post("/callbacks/cloudevents", inbound.ServeHTTP)
	})

	g, ctx := errgroup.WithContext(ctx)

	if len(cfg.KafkaBrokers) > 0 {
		topics := []string{
			string(notifications.KanaalZaken),
			string(notifications.KanaalBesluiten),
			string(notifications.KanaalDocumenten),
			notifications.CloudEventTopic,
		}
		if err := kafka.EnsureTopics(ctx, cfg.KafkaBrokers, topics...); err != nil {
			return fmt.Errorf("ensure topics: %w", err)
		}
		producer, err := kafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer producer.Close()

		worker := notifications.NewWorker(outbox, producer, log)
		g.Go(func() error { return worker.Run(ctx) })

		inboundConsumer, err := consumer.New(cfg.KafkaBrokers, "zgw", []string{notifications.CloudEventTopic}, inbound, log)
		if err != nil {
			return fmt.Errorf("connect kafka consumer: %w", err)
		}
		g.Go(func() error { return inboundConsumer.Run(ctx) })
	}

	srv := httpserver.New(cfg.Addr, router)
	g.Go(func() error {
		log.Info("zgw api listening", "addr", cfg.Addr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// koppelaar adapts the case service to the inbound cloud event interface.
type koppelaar struct {
	svc *zrc.Service
}

func (k koppelaar) Koppel(ctx context.Context, zaakID uuid.UUID, objectURL, objectType string) error {
	return k.svc.Koppel(ctx, domain.ZaakID(zaakID), objectURL, objectType)
}

func (k koppelaar) Ontkoppel(ctx context.Context, zaakID uuid.UUID, objectURL string) error {
	return k.svc.Ontkoppel(ctx, domain.ZaakID(zaakID), objectURL)
}
