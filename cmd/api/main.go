package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jhoicas/Terminal-wms/internal/application/allocation"
	"github.com/jhoicas/Terminal-wms/internal/application/batch"
	"github.com/jhoicas/Terminal-wms/internal/application/intake"
	"github.com/jhoicas/Terminal-wms/internal/application/syncdown"
	"github.com/jhoicas/Terminal-wms/internal/infrastructure/erp"
	"github.com/jhoicas/Terminal-wms/internal/infrastructure/notify"
	"github.com/jhoicas/Terminal-wms/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Terminal-wms/internal/interfaces/http"
	"github.com/jhoicas/Terminal-wms/pkg/config"
	"github.com/jhoicas/Terminal-wms/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if err := runMigrations(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool, time.Duration(cfg.Sync.LockTimeoutSeconds)*time.Second)
	readRepos := postgres.NewRepositorySet(pool)
	syncRepo := postgres.NewSyncRepository(pool)

	engine := allocation.NewEngine(log)
	intakeSvc := intake.NewService(log)
	erpClient := erp.NewDiaClient(cfg.ERP, log)
	notifier := notify.New(cfg.Telegram, log)
	processor := batch.NewProcessor(txRunner, engine, intakeSvc, erpClient, notifier, log)
	syncSvc := syncdown.NewService(syncRepo, readRepos.Receipts,
		time.Duration(cfg.Sync.SafetyBufferSeconds)*time.Second, cfg.Sync.DefaultPageLimit, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Terminal WMS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Processor: processor,
		Sync:      syncSvc,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// runMigrations aplica las migraciones SQL pendientes antes de abrir el pool.
func runMigrations(dsn string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return goose.Up(db, "migrations")
}
