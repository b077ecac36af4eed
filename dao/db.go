package dao

import (
	"aintranet-backend/config"
	"aintranet-backend/model"
	"fmt"
	"log/slog"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 全局数据库连接
var DB *gorm.DB

// Init 连接 MySQL 并同步表结构
func Init(cfg config.MySQLConfig) error {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	DB = db
	slog.Info("Connected to mysql", "host", cfg.Host, "database", cfg.Database)
	return nil
}

// Models 返回需要迁移的全部表
func Models() []any {
	return []any{
		&model.User{},
		&model.Department{},
		&model.Employee{},
		&model.Vacation{},
		&model.Ticket{},
		&model.Document{},
		&model.Announcement{},
		&model.Client{},
		&model.Invoice{},
		&model.MLClientResult{},
		&model.PowerBIReport{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ChatAction{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Store 门户业务数据访问，实现 tools.Repository
// 查询不到记录时返回 (nil, nil)
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	if db == nil {
		db = DB
	}
	return &Store{DB: db}
}
