package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftora/marketplace/internal/config"
	"github.com/craftora/marketplace/internal/notify"
	"github.com/craftora/marketplace/internal/repository"
	"github.com/craftora/marketplace/internal/server"
	"github.com/craftora/marketplace/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("pgxpool.New: %v", err)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		log.Fatalf("repository.Migrate: %v", err)
	}

	orderStore := repository.NewOrder(pool)
	productLookup := repository.NewProduct(pool)
	promotionPool := repository.NewPromotion(pool)

	orders := service.NewOrders(orderStore, productLookup, notify.LogSink{}, cfg.Engine.CommissionRate)
	revenue := service.NewRevenue(orderStore, promotionPool)
	ranking := service.NewRanking(promotionPool, productLookup)

	srv := server.New(orders, revenue, ranking)

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := srv.Router().Run(cfg.HTTP.Addr); err != nil {
		log.Fatalf("router.Run: %v", err)
	}
}
