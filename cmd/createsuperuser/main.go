// Command createsuperuser creates a staff superuser account.
//
// Credentials come from -email/-password/-name or, when a flag is empty,
// from ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_NAME.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hugh/recipe-api/internal/auth"
	"github.com/hugh/recipe-api/internal/database"
	"github.com/hugh/recipe-api/pkg/config"
	"github.com/hugh/recipe-api/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	email := flag.String("email", "", "superuser email")
	password := flag.String("password", "", "superuser password")
	name := flag.String("name", "", "display name")
	flag.Parse()

	*email = orEnv(*email, "ADMIN_EMAIL")
	*password = orEnv(*password, "ADMIN_PASSWORD")
	*name = orEnv(*name, "ADMIN_NAME")

	if *email == "" || *password == "" {
		log.Fatal("email and password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env, cfg.Server.LogLevel)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	authService := auth.NewService(db, auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry()))

	user, err := authService.CreateSuperuser(context.Background(), *email, *password, auth.WithName(*name))
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			fmt.Printf("User already exists: %s\n", *email)
			return
		}
		log.Fatalf("failed to create superuser: %v", err)
	}

	fmt.Printf("Superuser created successfully!\n")
	fmt.Printf("ID: %d\n", user.ID)
	fmt.Printf("Email: %s\n", user.Email)
}

func orEnv(value, key string) string {
	if value != "" {
		return value
	}
	return os.Getenv(key)
}
