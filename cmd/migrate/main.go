package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jhoicas/bodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	var dir string
	flag.StringVar(&dir, "dir", cfg.Migration.Dir, "directorio de migraciones (vacío = embebidas)")
	flag.Parse()

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}
	command, args := arguments[0], arguments[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo conectar a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, dir, command, args...); err != nil {
		log.Error().Err(err).Str("command", command).Msg("migración fallida")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Str("command", command).Msg("migración completada")
}
