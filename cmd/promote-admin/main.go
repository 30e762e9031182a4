// Package main выдаёт или снимает права администратора у существующего пользователя.
//
// Пример: CONFIG_PATH=config/local.yaml promote-admin -user alice
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/7BlackFire7/sport-program/internal/config"
	"github.com/7BlackFire7/sport-program/internal/lib/logger"
	"github.com/7BlackFire7/sport-program/internal/lib/sl"
	"github.com/7BlackFire7/sport-program/internal/migrations"
	"github.com/7BlackFire7/sport-program/internal/storage"
	"github.com/7BlackFire7/sport-program/internal/storage/repository"
)

func main() {
	username := flag.String("user", "", "username to change")
	revoke := flag.Bool("revoke", false, "revoke admin rights instead of granting them")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: promote-admin -user <username> [-revoke]")
		os.Exit(2)
	}

	cfg := config.MustLoad()
	log := logger.Setup(cfg.Env)

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		log.Error("failed to connect to database", sl.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Run(db.DB); err != nil {
		log.Error("failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.SetAdmin(ctx, *username, !*revoke); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Error("user not found", slog.String("username", *username))
		} else {
			log.Error("failed to update user", sl.Err(err))
		}
		os.Exit(1)
	}

	log.Info("admin rights updated", slog.String("username", *username), slog.Bool("is_admin", !*revoke))
}
