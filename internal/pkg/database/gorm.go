package database

import (
	"HalalCalendar/internal/api/config"
	"HalalCalendar/internal/model"
	"HalalCalendar/internal/pkg/logger"
	"fmt"
	log "log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewGormDB 初始化并返回 *gorm.DB 实例，处理连接池配置
func NewGormDB(cfg *config.DBConfig) (*gorm.DB, error) {
	dialector := mysql.Open(cfg.DSN)

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

// AutoMigrate 同步表结构
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.PostTag{},
		&model.Like{},
		&model.PostComment{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if db.Dialector.Name() == "mysql" {
		if err := binaryTagNames(db); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// binaryTagNames 标签名按字节比较，索引随列排序规则一起生效
func binaryTagNames(db *gorm.DB) error {
	return db.Exec(fmt.Sprintf(
		"ALTER TABLE post_tags MODIFY name VARCHAR(%d) CHARACTER SET utf8mb4 COLLATE %s NOT NULL",
		model.TagNameMaxLen, model.TagNameCollation,
	)).Error
}
