// seed_admin aplica las migraciones y crea el usuario administrador inicial.
//
// Uso: SEED_ADMIN_PASSWORD=... go run ./cmd/seed_admin
// Toma SEED_ADMIN_USERNAME (admin) y SEED_ADMIN_NAME de la configuración. Si el usuario ya existe no lo modifica.
package main

import (
	"context"
	"os"
	"time"

	"github.com/civistock/civistock-api/internal/application/usecase"
	"github.com/civistock/civistock-api/internal/infrastructure/postgres"
	"github.com/civistock/civistock-api/pkg/config"
	"github.com/civistock/civistock-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed_admin"})

	if cfg.Seed.AdminPassword == "" {
		log.Error().Msg("SEED_ADMIN_PASSWORD es obligatorio")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Strs("aplicadas", applied).Msg("migraciones al día")

	created, err := usecase.NewUserUseCase(postgres.NewUserRepository(pool)).
		EnsureAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminName, cfg.Seed.AdminPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("crear administrador")
	}
	if !created {
		log.Info().Str("username", cfg.Seed.AdminUsername).Msg("el administrador ya existe")
		return
	}
	log.Info().Str("username", cfg.Seed.AdminUsername).Msg("administrador creado")
}
