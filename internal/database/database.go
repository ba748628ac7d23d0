package database

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"museumtix/internal/domain"

	_ "modernc.org/sqlite"
)

// newLogger reports slow queries and errors; a lookup that finds nothing is not an error.
func newLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:  newLogger(os.Stdout),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		log.Println("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Println("Using SQLite for local development:", dsn)

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	// one connection: ":memory:" is per-connection and sqlite serialises writers anyway
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Museum{},
		&domain.Event{},
		&domain.Booking{},
		&domain.Payment{},
		&domain.Promotion{},
		&domain.ChatLogEntry{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
