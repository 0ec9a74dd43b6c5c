package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"anara-skills/registrar/internal/config"
	"anara-skills/registrar/internal/db"
	"anara-skills/registrar/internal/logging"
	"anara-skills/registrar/internal/models/dtos"
	"anara-skills/registrar/internal/services"
)

// Seeds an admin account so the dashboard can be reached on a fresh database.
//
//	ADMIN_PASSWORD=... go run ./cmd/admin_seed -name "Ops" -email ops@example.com -phone 9000000000
func main() {
	name := flag.String("name", "", "admin display name")
	email := flag.String("email", "", "admin login email")
	phone := flag.String("phone", "", "admin phone number")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logging.Init(cfg.AppEnv, cfg.LogLevel); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logging.Close()

	orm, err := db.InitPostgresORM(cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	if err := db.Migrate(orm); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	accounts := services.NewAccountService(orm, nil, nil, cfg.FrontendURL, nil)
	admin, err := accounts.RegisterAdmin(context.Background(), dtos.AdminRegisterRequest{
		Name:     *name,
		Email:    *email,
		Phone:    *phone,
		Password: os.Getenv("ADMIN_PASSWORD"),
	})
	if err != nil {
		log.Fatalf("register admin: %v", err)
	}

	fmt.Println("New admin:", admin.ID, admin.Email)
}
