package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tbrintet/zik.eirb.fr/internal/config"
	"github.com/tbrintet/zik.eirb.fr/internal/database"
	"github.com/tbrintet/zik.eirb.fr/internal/handler"
	"github.com/tbrintet/zik.eirb.fr/internal/queue"
	"github.com/tbrintet/zik.eirb.fr/internal/repository"
	"github.com/tbrintet/zik.eirb.fr/internal/router"
)

func main() {
	// Load a local .env when present; real deployments set the
	// environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting and caching disabled")
	}

	reservations := repository.NewReservationRepo(db)
	members := repository.NewReservationUserRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	events := queue.NewPublisher(cfg.AMQPURL)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens))
	router.RegisterReservations(e, handler.NewReservationHandler(reservations, members, events), cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
