package main

import (
	"database/sql"
	"flag"
	"fmt"

	"abc-retailers/internal/config"
	"abc-retailers/internal/db"
	"abc-retailers/internal/logger"

	"go.uber.org/zap"
)

var (
	migrateUp     = db.Migrate
	migrateDown   = db.Rollback
	migrateStatus = db.MigrationStatus
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up, down or status")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	if err := run(database, *mode); err != nil {
		logger.L().Fatal("migration failed", zap.String("mode", *mode), zap.Error(err))
	}
}

func run(database *sql.DB, mode string) error {
	switch mode {
	case "up":
		return migrateUp(database, logger.L())
	case "down":
		if err := migrateDown(database); err != nil {
			return err
		}
		logger.L().Info("Rollback successful")
		return nil
	case "status":
		return migrateStatus(database)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up', 'down' or 'status')", mode)
	}
}
