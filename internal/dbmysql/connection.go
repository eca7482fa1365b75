package dbmysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campusnet/internal/config"
	"campusnet/internal/logging"
)

// Models lists every table owned by the relational store.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Project{},
		&Story{},
		&Message{},
		&Group{},
		&GroupMember{},
		&GroupMessage{},
		&Follow{},
		&Like{},
		&Bookmark{},
		&Comment{},
		&Notification{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Open connects using the configured driver.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		return NewSQLite(cfg.Database.SQLitePath, log)
	case "mysql", "":
		return NewMySQL(cfg, log)
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}

// NewMySQL returns a GORM DB instance connected to MySQL
func NewMySQL(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	log = logging.OrNop(log)
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB error: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Info("connected to MySQL",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DatabaseName))
	return db, nil
}

// NewSQLite opens an embedded database. Use ":memory:" for an ephemeral store.
func NewSQLite(path string, log *zap.Logger) (*gorm.DB, error) {
	log = logging.OrNop(log)
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open SQLite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB error: %w", err)
	}
	// one writer; also keeps a :memory: database alive across calls
	sqlDB.SetMaxOpenConns(1)

	log.Info("opened SQLite", zap.String("path", path))
	return db, nil
}
