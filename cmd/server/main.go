// @title LinkedIn Clone Feed API
// @version 1.0
// @description Posts, comments and likes for a LinkedIn-style feed.
// @host localhost:8000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brauliobolano/LinkedInClone/bootstrap"
	"github.com/brauliobolano/LinkedInClone/config"
	"github.com/brauliobolano/LinkedInClone/database"
	_ "github.com/brauliobolano/LinkedInClone/docs"
	"github.com/brauliobolano/LinkedInClone/internal/cache"
	"github.com/brauliobolano/LinkedInClone/internal/client"
	"github.com/brauliobolano/LinkedInClone/internal/job"
	"github.com/brauliobolano/LinkedInClone/internal/logger"
	"github.com/brauliobolano/LinkedInClone/internal/metrics"
	"github.com/brauliobolano/LinkedInClone/internal/repository"
	"github.com/brauliobolano/LinkedInClone/internal/routes"
	"github.com/brauliobolano/LinkedInClone/internal/services"
	"github.com/brauliobolano/LinkedInClone/web"
)

const appName = "LinkedIn Clone"

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	// Connect to the database
	mongoMgr := database.NewManager(cfg.Mongo, zlog)
	mongoClient, err := mongoMgr.Ensure(ctx)
	if err != nil {
		zlog.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	db, err := mongoMgr.Database(ctx)
	if err != nil {
		zlog.Fatal("Failed to open database", zap.Error(err))
	}

	if err := bootstrap.EnsureIndexes(ctx, db); err != nil {
		zlog.Fatal("Failed to ensure indexes", zap.Error(err))
	}

	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)

	var uploader services.ImageUploader
	if cfg.Storage.S3Enabled() {
		s3u, err := client.NewS3Uploader(ctx, cfg.Storage)
		if err != nil {
			zlog.Fatal("Failed to init S3 uploader", zap.Error(err))
		}
		uploader = s3u
		zlog.Info("Images stored in S3", zap.String("bucket", cfg.Storage.S3Bucket))
	} else {
		local, err := client.NewLocalUploader(cfg.Storage.UploadDir, "/uploads")
		if err != nil {
			zlog.Fatal("Failed to init local uploader", zap.Error(err))
		}
		uploader = local
		zlog.Info("Images stored on disk", zap.String("dir", cfg.Storage.UploadDir))
	}

	var (
		feedCache services.FeedCache
		rdb       *redis.Client
	)
	if cfg.Redis.Addr != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			zlog.Warn("Redis unavailable, feed cache disabled", zap.Error(err))
		} else {
			feedCache = cache.NewFeedCache(rdb, cfg.Redis.FeedCacheTTL)
		}
	}

	m := metrics.New()

	authSvc := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, zlog)
	postSvc := services.NewPostService(services.PostServiceDeps{
		Posts:    postRepo,
		Comments: commentRepo,
		Tx:       repository.NewTransactor(mongoClient),
		Uploader: uploader,
		Cache:    feedCache,
		Metrics:  m,
		Logger:   zlog,
	})

	tmpl, err := web.Templates()
	if err != nil {
		zlog.Fatal("Failed to parse templates", zap.Error(err))
	}

	app := routes.NewApp(routes.AppDeps{
		AppName:      appName,
		Log:          zlog,
		Metrics:      m,
		Gatherer:     prometheus.DefaultGatherer,
		Tokens:       authSvc,
		Posts:        postSvc,
		Auth:         authSvc,
		Templates:    tmpl,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Timeout:      cfg.Server.RequestTimeout,
		UploadDir:    cfg.Storage.UploadDir,
		SecureCookie: cfg.Server.Env == "prod",
	})

	sweeper := job.NewOrphanSweepJob(commentRepo, m, zlog.Named("orphan_sweep"), cfg.Jobs.OrphanSweepPurge)
	scheduler, err := job.Schedule(cfg.Jobs.OrphanSweepSchedule, sweeper, zlog)
	if err != nil {
		zlog.Fatal("Failed to schedule orphan sweep", zap.Error(err))
	}

	go func() {
		zlog.Info("Server starting", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Server.Env))
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down")

	<-scheduler.Stop().Done()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mongoMgr.Disconnect(shutdownCtx); err != nil {
		zlog.Error("MongoDB disconnect failed", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			zlog.Error("Redis close failed", zap.Error(err))
		}
	}

	zlog.Info("Server exited")
}
