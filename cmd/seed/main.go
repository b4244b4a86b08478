// seed carga bodegas y productos desde un catálogo CSV y emite un token admin de prueba.
//
// Uso: go run ./cmd/seed [-latin1] [catalogo.csv]
// Por defecto busca catalogo.csv en el directorio actual.
// Cada cantidad inicial queda registrada como movimiento IN (token ALTA).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/bodega-api/internal/application/dto"
	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/application/usecase"
	"github.com/jhoicas/bodega-api/internal/domain"
	"github.com/jhoicas/bodega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/jhoicas/bodega-api/pkg/jwt"
	"github.com/jhoicas/bodega-api/pkg/logger"
)

const seedUserID = "seed"

func main() {
	latin1 := flag.Bool("latin1", false, "el archivo viene en ISO-8859-1")
	flag.Parse()
	path := "catalogo.csv"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("abrir catálogo")
	}
	rows, err := parseCatalog(f, *latin1)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("leer catálogo")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	warehouseRepo := postgres.NewWarehouseRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	applier := inventory.NewMovementApplier(txRunner, postgres.NewMovementRepository(pool), log)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	itemUC := usecase.NewItemUseCase(txRunner, postgres.NewInventoryItemRepository(pool), warehouseRepo, applier, cfg.App.LowStockThreshold, log)

	warehouses := map[string]string{}
	created, skipped := 0, 0
	for _, row := range rows {
		whID, ok := warehouses[row.Warehouse]
		if !ok {
			wh, err := warehouseUC.Create(ctx, dto.CreateWarehouseRequest{Name: row.Warehouse})
			if err != nil {
				log.Fatal().Err(err).Str("warehouse", row.Warehouse).Msg("crear bodega")
			}
			whID = wh.ID
			warehouses[row.Warehouse] = whID
		}
		_, err := itemUC.Create(ctx, seedUserID, dto.CreateItemRequest{
			SKU:             row.SKU,
			Name:            row.Name,
			WarehouseID:     whID,
			InitialQuantity: row.Quantity,
		})
		if errors.Is(err, domain.ErrDuplicate) {
			skipped++
			continue
		}
		if err != nil {
			log.Fatal().Err(err).Str("sku", row.SKU).Msg("crear producto")
		}
		created++
	}
	log.Info().Int("warehouses", len(warehouses)).Int("items", created).Int("skipped", skipped).Msg("catálogo cargado")

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: no se emite token")
		return
	}
	tok, err := jwt.Generate(cfg.JWT.Secret, seedUserID, jwt.RoleAdmin, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Fatal().Err(err).Msg("emitir token")
	}
	fmt.Println(tok)
}
