// @title                       Civistock API
// @version                     1.0
// @description                 API de control de materiales de obra: retiros, devoluciones y disposición de existencias.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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

	_ "github.com/civistock/civistock-api/docs"
	appanalytics "github.com/civistock/civistock-api/internal/application/analytics"
	"github.com/civistock/civistock-api/internal/application/auth"
	"github.com/civistock/civistock-api/internal/application/inventory"
	"github.com/civistock/civistock-api/internal/application/usecase"
	"github.com/civistock/civistock-api/internal/domain/repository"
	"github.com/civistock/civistock-api/internal/infrastructure/memory"
	"github.com/civistock/civistock-api/internal/infrastructure/metrics"
	"github.com/civistock/civistock-api/internal/infrastructure/notify"
	"github.com/civistock/civistock-api/internal/infrastructure/postgres"
	httpRouter "github.com/civistock/civistock-api/internal/interfaces/http"
	"github.com/civistock/civistock-api/pkg/config"
	"github.com/civistock/civistock-api/pkg/logger"
	"github.com/civistock/civistock-api/pkg/timefmt"
)

const swaggerFile = "./docs/swagger.json"

// repos puertos de persistencia según STORAGE.
type repos struct {
	users         repository.UserRepository
	materials     repository.MaterialRepository
	movements     repository.MovementRepository
	events        repository.MovementEventRepository
	notifications repository.NotificationRepository
	tx            inventory.TxRunner
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.App.Storage).
		Str("timezone", cfg.App.Timezone).
		Msg("iniciando aplicación")

	loc := timefmt.Location(cfg.App.Timezone)
	ctx := context.Background()

	var r repos
	switch cfg.App.Storage {
	case "memory":
		store := memory.NewStore()
		r = repos{
			users:         store.Users(),
			materials:     store.Materials(),
			movements:     store.Movements(),
			events:        store.Events(),
			notifications: store.Notifications(),
			tx:            store,
		}
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		if cfg.DB.AutoMigrate {
			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				log.Fatal().Err(err).Msg("migraciones")
			}
			log.Info().Strs("aplicadas", applied).Msg("migraciones al día")
		}
		r = repos{
			users:         postgres.NewUserRepository(pool),
			materials:     postgres.NewMaterialRepository(pool),
			movements:     postgres.NewMovementRepository(pool),
			events:        postgres.NewMovementEventRepository(pool),
			notifications: postgres.NewNotificationRepository(pool),
			tx:            postgres.NewTxRunner(pool),
		}
	}

	// Redis es opcional: sin broker las notificaciones solo se persisten.
	var publisher notify.Publisher
	if cfg.Notify.Enabled {
		client, err := notify.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, notificaciones sin publicar")
		} else {
			defer client.Close()
			publisher = notify.NewRedisPublisher(client)
		}
	}

	appMetrics := metrics.New("civistock")
	notifier := notify.NewNotifier(r.users, r.notifications, publisher, cfg.Redis.Channel, log)

	userUC := usecase.NewUserUseCase(r.users)
	if cfg.App.Storage == "memory" && cfg.Seed.AdminPassword != "" {
		if _, err := userUC.EnsureAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminName, cfg.Seed.AdminPassword); err != nil {
			log.Fatal().Err(err).Msg("crear administrador")
		}
	}

	lifecycleUC := inventory.NewLifecycleUseCase(r.tx, r.materials, r.movements, r.users, notifier, log,
		inventory.WithRecorder(appMetrics),
		inventory.WithLocation(loc),
	)
	replenishmentUC := inventory.NewReplenishmentUseCase(r.materials)
	authUC := auth.NewAuthUseCase(r.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(appMetrics.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Civistock API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		Lifecycle:      lifecycleUC,
		Replenishment:  replenishmentUC,
		MaterialUC:     usecase.NewMaterialUseCase(r.materials),
		MovementQuery:  usecase.NewMovementQueryUseCase(r.movements, r.materials, r.events, log, loc),
		UserUC:         userUC,
		NotificationUC: usecase.NewNotificationUseCase(r.notifications, loc),
		DashboardUC:    appanalytics.NewDashboardUseCase(r.movements, r.materials, replenishmentUC, loc),
		Metrics:        appMetrics.Handler(),
		JWTSecret:      cfg.JWT.Secret,
		ServiceName:    cfg.App.Name,
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
