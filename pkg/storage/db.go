// Package storage 提供 sqlite 数据库连接
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/paneq/awesome-openclaw-slack/pkg/observability"
)

// MemoryPath 内存数据库路径
const MemoryPath = ":memory:"

// ErrEmptyPath 未配置数据库路径
var ErrEmptyPath = errors.New("database path is required")

// Config 数据库配置
type Config struct {
	Path string // 数据库文件路径，支持 ~ 前缀
}

// Open 打开数据库连接，必要时创建所在目录
func Open(cfg Config) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, ErrEmptyPath
	}

	dbPath := cfg.Path
	if dbPath != MemoryPath {
		dbPath = expandPath(dbPath)
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// 内存库每个连接相互独立，只保留一个连接
	if dbPath == MemoryPath {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	observability.Info("Database initialized", "path", dbPath)
	return db, nil
}

// Close 关闭数据库连接
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// expandPath 展开路径中的 ~ 为用户主目录
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
