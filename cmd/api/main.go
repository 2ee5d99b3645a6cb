package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "material-tracker/internal/adapter/http"
	"material-tracker/internal/adapter/middleware"
	"material-tracker/internal/adapter/repository/sqlstore"
	"material-tracker/internal/config"
	"material-tracker/internal/domain/reference"
	"material-tracker/internal/infrastructure/cache"
	"material-tracker/internal/infrastructure/db"
	"material-tracker/internal/infrastructure/logger"
	"material-tracker/internal/infrastructure/notify"
	"material-tracker/internal/infrastructure/session"
	"material-tracker/internal/usecase/approval"
	"material-tracker/internal/usecase/auth"
	"material-tracker/internal/usecase/notification"
	"material-tracker/internal/usecase/presence"
	"material-tracker/internal/usecase/report"
	"material-tracker/internal/usecase/request"
	"material-tracker/internal/usecase/requester"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(&logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: "stdout"})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), log, logger.GormLevel(cfg.LogLevel), cfg.SlowQuery)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.Fatal("open redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	// repositories
	txs := sqlstore.NewTransactionRepository(gdb)
	uow := sqlstore.NewGormUoW(gdb)
	sessions := session.NewRedisStore(rdb, cfg.SessionTTL)
	bus := notify.NewRedisBus(rdb, cfg.SeenTTL, log)

	// use cases
	notifyUC := notification.NewUsecase(bus, bus, bus, txs, log)
	presenceUC := presence.NewUsecase(
		sqlstore.NewPresenceRepository(gdb),
		cache.NewThrottle(rdb, "materials:presence:", cfg.PresenceTouch),
		cfg.PresenceStale, log)
	requesterUC := requester.NewUsecase(sqlstore.NewRequesterRepository(gdb), sessions, log)
	authUC := auth.NewUsecase(sessions, requesterUC, presenceUC, cfg.AdminPassword, log)
	requestUC := request.NewUsecase(uow, txs, reference.NewAllocator(reference.NewGenerator()), notifyUC, log)
	approvalUC := approval.NewUsecase(uow, approval.Passwords{Delete: cfg.DeletePassword, History: cfg.HistoryPassword}, notifyUC, log)
	reportUC := report.NewUsecase(txs, report.Letterhead{Company: cfg.ReceiptCompany, Address: cfg.ReceiptAddress}, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestID(), logger.Recovery(log), logger.EchoMiddleware(log))

	httpadp.Register(e, httpadp.Handlers{
		Health: httpadp.NewHealthHandler(map[string]httpadp.Check{
			"db": func(ctx context.Context) error {
				sqlDB, err := gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Auth:         httpadp.NewAuthHandler(authUC, log),
		Transactions: httpadp.NewTransactionHandler(requestUC, reportUC, log),
		Approvals:    httpadp.NewApprovalHandler(approvalUC, reportUC, log),
		Requesters:   httpadp.NewRequesterHandler(requesterUC, log),
		Presence:     httpadp.NewPresenceHandler(presenceUC, notifyUC, log),
	}, httpadp.Guards{
		Beacon:      middleware.BeaconToken(),
		Auth:        middleware.Auth(authUC, log),
		Admin:       middleware.AdminOnly(),
		Touch:       middleware.PresenceTouch(presenceUC),
		Idempotency: middleware.Idempotency(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, log),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go presenceUC.Run(ctx, cfg.Heartbeat)

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.AppEnv))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
