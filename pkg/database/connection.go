package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/isahbella007/whatsapp-first-erp/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the ledger database. DB_DRIVER selects mysql (default) or
// sqlite.
func Connect(cfg config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		log.Printf("Using sqlite database at %s", cfg.SQLitePath)
		dialector = sqlite.Open(cfg.SQLitePath)
	case "", "mysql", "mariadb":
		dialector = mysql.Open(MySQLDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY on sale commits
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Println("Database connection established successfully")
	return db, nil
}

// MySQLDSN prefers DATABASE_URL, converting mysql:// and mariadb:// URLs to
// the driver's DSN form, and otherwise builds the DSN from its parts.
func MySQLDSN(cfg config.DatabaseConfig) string {
	if cfg.URL == "" {
		log.Println("Constructing DSN from individual components")
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	}

	log.Println("Using DATABASE_URL for connection")
	dsn := cfg.URL
	var raw string
	switch {
	case strings.HasPrefix(dsn, "mysql://"):
		raw = strings.TrimPrefix(dsn, "mysql://")
	case strings.HasPrefix(dsn, "mariadb://"):
		raw = strings.TrimPrefix(dsn, "mariadb://")
	default:
		return dsn
	}

	// user:pass@host:port/dbname?params
	creds, rest, ok := strings.Cut(raw, "@")
	if !ok {
		return dsn
	}
	hostPort, dbName, ok := strings.Cut(rest, "/")
	if !ok {
		return dsn
	}
	params := "?charset=utf8mb4&parseTime=True&loc=Local"
	if name, q, found := strings.Cut(dbName, "?"); found {
		dbName = name
		params = "?" + q
	}
	return fmt.Sprintf("%s@tcp(%s)/%s%s", creds, hostPort, dbName, params)
}
