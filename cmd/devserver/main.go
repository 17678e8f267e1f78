package main // development stub of the remote FarmTrack API

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/farmtrack/mobile-core/internal/config"
	"github.com/farmtrack/mobile-core/internal/stubapi"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.LoadServer()

	users, err := stubapi.NewUserSet(cfg.BcryptCost)
	if err != nil {
		log.Fatalf("seed users: %v", err)
	}

	e := echo.New()
	stubapi.RegisterRoutes(e, stubapi.NewHandler(cfg, users))

	addr := ":" + cfg.Port
	log.Printf("stub api listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
