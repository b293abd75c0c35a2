package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/yi-nology/lab_portal/biz/dal/db"
	"github.com/yi-nology/lab_portal/biz/handler"
	"github.com/yi-nology/lab_portal/biz/handler/version"
	"github.com/yi-nology/lab_portal/biz/middleware"
	"github.com/yi-nology/lab_portal/biz/router"
	"github.com/yi-nology/lab_portal/biz/service/revalidate"
	"github.com/yi-nology/lab_portal/biz/service/site"
	uploadservice "github.com/yi-nology/lab_portal/biz/service/upload"
	"github.com/yi-nology/lab_portal/pkg/cms"
	"github.com/yi-nology/lab_portal/pkg/config"
	"github.com/yi-nology/lab_portal/pkg/database"
	"github.com/yi-nology/lab_portal/pkg/locale"
	"github.com/yi-nology/lab_portal/pkg/lock"
	"github.com/yi-nology/lab_portal/pkg/logger"
	"github.com/yi-nology/lab_portal/pkg/pagecache"
	"github.com/yi-nology/lab_portal/pkg/redis"
	"github.com/yi-nology/lab_portal/pkg/static"
	"github.com/yi-nology/lab_portal/pkg/storage"
	"github.com/yi-nology/lab_portal/pkg/upload"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	configFile = "config.yaml"

	lockPrefix         = "lab_portal:lock:"
	lockTTL            = 30 * time.Second
	lockAcquireTimeout = 10 * time.Second

	// multipart framing on top of the file size limit
	bodySlack = 1 << 20
)

func main() {
	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	log, sink, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	logger.BindHertz(sink, cfg.Log.Level)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()
	info := version.Current()
	log.Info("starting lab portal",
		zap.String("version", info.Version),
		zap.String("git_commit", info.GitCommit),
		zap.String("address", cfg.Server.Address))

	conn, err := database.Open(cfg.Database, log)
	if err != nil {
		return err
	}
	if err := db.Migrate(conn); err != nil {
		return err
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var locker lock.Locker
	if rdb != nil {
		locker = lock.New(rdb, lockPrefix, lockTTL, lockAcquireTimeout)
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return err
	}
	provider := upload.New(upload.ConfigFrom(cfg.Storage.OSS, cfg.Upload.SizeLimit), store, log)

	cmsClient, err := cms.New(cfg.CMS, log)
	if err != nil {
		return err
	}
	webFS, err := static.WebFS()
	if err != nil {
		return err
	}
	renderer, err := site.NewRenderer(webFS)
	if err != nil {
		return err
	}
	cache := pagecache.New(cfg.Site, rdb, log)

	uploads := uploadservice.NewService(conn, provider, cfg.Upload, locker, log)
	pages := site.NewService(cmsClient, renderer, cache, log)
	revalidator := revalidate.NewService(cache, log)
	resolver := locale.NewResolver(cfg.Site.DefaultLocale)

	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(int(cfg.Upload.SizeLimit)+bodySlack),
	)
	h.Use(middleware.Recovery(), middleware.RequestID(), middleware.Logging(), middleware.Metrics())
	handlers := router.Handlers{
		Upload:     handler.NewUploadHandler(uploads, cfg.Upload.SizeLimit),
		Revalidate: handler.NewRevalidateHandler(revalidator, cfg.Revalidate.Secret, log),
		Locale:     handler.NewLocaleHandler(resolver),
		Page:       handler.NewPageHandler(pages, log),
		Asset:      handler.NewAssetHandler(webFS),
	}
	if store.Type() == "local" {
		handlers.Media = handler.NewMediaHandler(store)
		log.Info("serving local uploads", zap.String("path", cfg.Storage.Local.BaseURL))
	}
	router.Register(h, handlers, router.Options{
		Resolver:   resolver,
		CORS:       &cfg.CORS,
		AdminToken: cfg.Upload.AdminToken,
		MediaPath:  cfg.Storage.Local.BaseURL,
	})

	if cfg.Metrics.Enabled {
		metricsSrv := serveMetrics(cfg.Metrics.Address, log)
		h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
			_ = metricsSrv.Shutdown(ctx)
		})
	}
	h.OnShutdown = append(h.OnShutdown, func(context.Context) {
		closeResources(conn, rdb, log)
	})

	// Spin blocks until SIGINT/SIGTERM and runs OnShutdown hooks.
	h.Spin()
	return nil
}

func serveMetrics(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("metrics listener started", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics listener failed", zap.Error(err))
		}
	}()
	return srv
}

func closeResources(conn *gorm.DB, rdb *goredis.Client, log *zap.Logger) {
	if sqlDB, err := conn.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warn("close database failed", zap.Error(err))
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Warn("close redis failed", zap.Error(err))
		}
	}
}
