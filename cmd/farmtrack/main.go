// Command farmtrack is a terminal consumer of the session core: it signs in
// and out against the FarmTrack API, shows the current session, and fetches
// the herd through the intercepted HTTP client. It stands in for the mobile
// UI during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql" // driver for the sql credential store backend
	"github.com/joho/godotenv"

	"github.com/farmtrack/mobile-core/internal/api"
	"github.com/farmtrack/mobile-core/internal/bus"
	"github.com/farmtrack/mobile-core/internal/config"
	"github.com/farmtrack/mobile-core/internal/credstore"
	"github.com/farmtrack/mobile-core/internal/database"
	"github.com/farmtrack/mobile-core/internal/session"
	"github.com/farmtrack/mobile-core/internal/transport"
)

func main() {
	email := flag.String("email", "", "email for the login command")
	password := flag.String("password", "", "password for the login command")
	flag.Parse()

	cmd := flag.Arg(0)
	if cmd == "" {
		fmt.Fprintln(os.Stderr, "usage: farmtrack [flags] login|logout|status|animals")
		os.Exit(2)
	}

	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("credential store: %v", err)
	}
	defer store.Close()

	b := bus.New()
	if cfg.AMQPURL != "" {
		bridge := bus.NewBridge(b, cfg.AMQPURL)
		defer bridge.Close()
	}

	httpClient := &http.Client{
		Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second,
		Transport: &transport.AuthTransport{
			Store:    store,
			Bus:      b,
			ProbeURL: cfg.ProbeURL,
		},
	}
	client := api.New(cfg.APIBaseURL, httpClient)
	mgr := session.NewManager(store, client, b)

	ctx := context.Background()
	mgr.Restore(ctx)

	switch cmd {
	case "login":
		if *email == "" || *password == "" {
			log.Fatal("login requires -email and -password")
		}
		if err := mgr.Login(ctx, *email, *password); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		printState(mgr.State())
	case "logout":
		mgr.Logout(ctx)
		fmt.Println("signed out")
	case "status":
		printState(mgr.State())
		fmt.Printf("token valid: %v\n", mgr.IsTokenValid())
	case "animals":
		animals, err := client.ListAnimals(ctx)
		if err != nil {
			log.Fatalf("list animals: %v", err)
		}
		for _, a := range animals {
			name := a.Name
			if name == "" {
				name = "-"
			}
			fmt.Printf("%-10s %-10s %-12s %s\n", a.TagNumber, a.Species, a.Breed, name)
		}
	default:
		log.Fatalf("unknown command %q", cmd)
	}
}

// openStore picks the credential store backend from configuration.
func openStore(cfg config.Config) (credstore.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return credstore.NewMemoryStore(), nil
	case "file":
		if cfg.StorePassphrase == "" {
			return nil, fmt.Errorf("CRED_STORE_PASSPHRASE is required for the file backend")
		}
		return credstore.NewFileStore(cfg.StoreDir, cfg.StorePassphrase)
	case "redis":
		client := config.NewRedisClient()
		if client == nil {
			return nil, fmt.Errorf("redis unreachable")
		}
		return credstore.NewRedisStore(client), nil
	case "sql":
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required for the sql backend")
		}
		db, err := database.Open("mysql", cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return credstore.NewSQLStore(db), nil
	default:
		return nil, fmt.Errorf("unknown credential store backend %q", cfg.StoreBackend)
	}
}

func printState(s session.State) {
	if !s.IsAuthenticated {
		fmt.Println("not signed in")
		return
	}
	fmt.Printf("signed in as %s <%s> (role=%s, farm=%d)\n",
		s.User.Name, s.User.Email, s.UserRole, s.User.FarmID)
}
