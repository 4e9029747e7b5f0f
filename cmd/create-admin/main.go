// create-admin creates an administrator account, or promotes an existing account
// to administrator. It talks to the configured storage directly and is the only
// way to grant the admin role.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"bike-parking-api-server/config"
	"bike-parking-api-server/internal/auth"
	"bike-parking-api-server/internal/database"
	"bike-parking-api-server/internal/logger"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", "./config", "directory containing config.yaml")
	email := pflag.String("email", "", "administrator email (required)")
	name := pflag.String("name", "Administrator", "display name for a new account")
	password := pflag.String("password", "", "password for a new account; ignored when promoting")
	pflag.Parse()

	if *email == "" {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer st.Close(context.Background())

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	admin, created, err := database.EnsureAdmin(ctx, st, hasher, *name, *email, *password)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	if created {
		fmt.Printf("Administrator created: %s <%s> (id %s)\n", admin.Name, admin.Email, admin.ID.Hex())
	} else {
		fmt.Printf("Account promoted to administrator: %s <%s> (id %s)\n", admin.Name, admin.Email, admin.ID.Hex())
	}
}
