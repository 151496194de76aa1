// 创建管理员账号，或将已有账号提升为管理员
//
//	go run ./cmd/admin -email admin@example.com -password secret123 -name "Site Admin"
package main

import (
	"HalalCalendar/internal/api/config"
	"HalalCalendar/internal/pkg/database"
	"HalalCalendar/internal/pkg/logger"
	"HalalCalendar/internal/repository"
	"HalalCalendar/internal/service"
	"HalalCalendar/internal/wire"
	"context"
	"flag"
	log "log/slog"
	"os"
	"time"
)

func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "password, required when the account does not exist yet")
	name := flag.String("name", "", "display name")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := config.LoadConfig(); err != nil {
		log.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger.InitLogger()

	dbCfg := config.Cfg.DB
	db, err := database.NewGormDB(&dbCfg)
	if err != nil {
		log.Error("failed to create database connection", "err", err)
		os.Exit(1)
	}
	if err = database.AutoMigrate(db); err != nil {
		log.Error("failed to migrate database", "err", err)
		os.Exit(1)
	}

	var displayName *string
	if *name != "" {
		displayName = name
	}

	// 不涉及 Token 注销
	userSvc := service.NewUserService(repository.NewUserRepo(db), wire.NewTokenManager(config.Cfg), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	user, err := userSvc.EnsureAdmin(ctx, *email, *password, displayName)
	if err != nil {
		log.Error("failed to ensure admin", "email", *email, "err", err)
		os.Exit(1)
	}
	log.Info("admin ready", "user_id", user.ID, "email", user.Email, "role", user.Role)
}
