package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ekazakov/violation-registry/internal/config"
	"github.com/ekazakov/violation-registry/internal/database"
	"github.com/ekazakov/violation-registry/internal/handler"
	"github.com/ekazakov/violation-registry/internal/middleware"
	"github.com/ekazakov/violation-registry/internal/queue"
	"github.com/ekazakov/violation-registry/internal/repository"
	"github.com/ekazakov/violation-registry/internal/router"
	"github.com/ekazakov/violation-registry/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := database.ApplySchema(context.Background(), db); err != nil {
		log.Fatalf("schema: %v", err)
	}

	accounts := repository.NewAccountRepo(db)
	owners := repository.NewOwnerRepo(db, cfg.LockTTL)
	inspectors := repository.NewInspectorRepo(db, cfg.LockTTL)
	vehicles := repository.NewVehicleRepo(db, cfg.LockTTL)
	violations := repository.NewViolationRepo(db, cfg.LockTTL)
	protocols := repository.NewProtocolRepo(db, cfg.LockTTL)
	refs := repository.NewReferenceRepo(db)
	reports := repository.NewReportRepo(db)

	events := service.NewPublisher()

	locks := handler.NewLockHandler(map[handler.Kind]handler.LockStore{
		handler.KindOwner:         owners,
		handler.KindInspector:     inspectors,
		handler.KindVehicle:       vehicles,
		handler.KindViolation:     violations,
		handler.KindProtocol:      protocols,
		handler.KindModel:         repository.NewLockRepo(db, repository.TableModel, cfg.LockTTL),
		handler.KindColor:         repository.NewLockRepo(db, repository.TableColor, cfg.LockTTL),
		handler.KindArticle:       repository.NewLockRepo(db, repository.TableArticle, cfg.LockTTL),
		handler.KindViolationType: repository.NewLockRepo(db, repository.TableViolationType, cfg.LockTTL),
	})

	h := router.Handlers{
		Auth:       handler.NewAuthHandler(accounts),
		Owners:     handler.NewOwnerHandler(owners, accounts, events),
		Inspectors: handler.NewInspectorHandler(inspectors, accounts, events),
		Vehicles:   handler.NewVehicleHandler(vehicles, owners, refs, accounts, events),
		Violations: handler.NewViolationHandler(violations, refs, accounts, events),
		Protocols:  handler.NewProtocolHandler(protocols, vehicles, owners, inspectors, violations, accounts, events),
		Locks:      locks,
		Reports:    handler.NewReportHandler(reports),
	}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; report cache and rate limiting disabled")
	} else {
		e.Use(middleware.NewRateLimit(config.LoadRateLimitConfig(), rdb))
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, h.Auth)
	router.RegisterRegistry(e, h)
	router.RegisterReports(e, h.Reports, middleware.NewReportCache(config.LoadCacheConfig(), rdb))

	go func() {
		if err := queue.StartChangeLogConsumer(); err != nil {
			log.Printf("changelog consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
