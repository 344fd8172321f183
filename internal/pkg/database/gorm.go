package database

import (
	"campcircle/internal/api/config"
	"campcircle/internal/pkg/logger"
	"fmt"
	log "log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewGormDB 初始化并返回 *gorm.DB 实例，处理连接池配置。
// TranslateError 打开后，唯一键冲突统一表现为 gorm.ErrDuplicatedKey，
// 不随底层驱动变化。
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		dialector = mysql.Open(cfg.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(),
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Minute)

	if err = sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database connection check failed: %w", err)
	}

	log.Info("Database connection established successfully.")
	return db, nil
}
