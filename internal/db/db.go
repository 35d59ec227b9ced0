package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/harbourbee/harbourbee-backend/internal/config"
	"github.com/harbourbee/harbourbee-backend/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Pool sizing for the API workload: order checkout and notification
// listing are short queries, so a small pool recycled well under Cloud
// SQL's wait_timeout is enough.
const (
	connMaxLifetime = 5 * time.Minute
	maxIdleConns    = 5
	maxOpenConns    = 10
)

// BuildDSN assembles the MySQL DSN from config. A Cloud SQL instance
// name wins over DB_HOST; otherwise the host may be a ready-made
// tcp()/unix() address, a socket path, or a plain hostname.
func BuildDSN(cfg *config.Config) string {
	var addr string
	switch {
	case cfg.InstanceConnectionName != "":
		addr = fmt.Sprintf("unix(/cloudsql/%s)", cfg.InstanceConnectionName)
	case strings.HasPrefix(cfg.DBHost, "tcp(") || strings.HasPrefix(cfg.DBHost, "unix("):
		addr = cfg.DBHost
	case strings.HasPrefix(cfg.DBHost, "/"):
		addr = fmt.Sprintf("unix(%s)", cfg.DBHost)
	default:
		addr = fmt.Sprintf("tcp(%s:%s)", cfg.DBHost, cfg.DBPort)
	}
	return fmt.Sprintf("%s:%s@%s/%s?charset=utf8mb4&parseTime=True&loc=Local", cfg.DBUser, cfg.DBPassword, addr, cfg.DBName)
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(BuildDSN(cfg)), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)

	return db, nil
}

// Migrate keeps the schema in step with the domain models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.VesselAssignment{},
		&model.Pool{},
		&model.Order{},
		&model.OrderItem{},
		&model.Notification{},
		&model.Exception{},
	)
}
