// Package store is the record store: gorm-backed handles over the users,
// requests, orders and payments collections plus the catalog tables.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"localchef-api/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a looked-up document does not exist
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert hits a unique index
var ErrDuplicate = errors.New("duplicate record")

// Open connects to Postgres when databaseURL is set and to the SQLite file at
// sqlitePath otherwise, then migrates every model.
func Open(ctx context.Context, databaseURL, sqlitePath string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if databaseURL != "" {
		dialector = postgres.Open(databaseURL)
	} else {
		dialector = sqlite.Open(sqliteDSN(sqlitePath))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if databaseURL != "" {
		configurePool(sqlDB)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service owns
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.RoleRequest{},
		&models.Order{},
		&models.OrderStatusHistory{},
		&models.Payment{},
		&models.PendingProjection{},
		&models.Meal{},
		&models.Chef{},
		&models.Category{},
		&models.Review{},
		&models.Favorite{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func configurePool(sqlDB *sql.DB) {
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
}

// Store bundles the collection handles. Handles are constructed once and
// passed by reference to the services that need them.
type Store struct {
	db *gorm.DB

	Users       *Users
	Requests    *Requests
	Orders      *Orders
	Payments    *Payments
	Projections *Projections
	Catalog     *Catalog
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Users:       &Users{db: db},
		Requests:    &Requests{db: db},
		Orders:      &Orders{db: db},
		Payments:    &Payments{db: db},
		Projections: &Projections{db: db},
		Catalog:     &Catalog{db: db},
	}
}

// Atomically runs fn with handles bound to a single transaction. Returning an
// error from fn rolls back every write made through those handles.
func (s *Store) Atomically(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping checks the underlying connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func newID() string {
	return uuid.NewString()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
