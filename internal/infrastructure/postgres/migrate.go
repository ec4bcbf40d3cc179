package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

// Migrate applies (up) or rolls back (down, steps) file migrations using
// database/sql with the pgx stdlib driver.
func Migrate(dsn, migrationsDir, direction string, steps int, logger *logrus.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{"dir": migrationsDir, "direction": direction}).Info("running migrations")
	switch direction {
	case "up":
		err = m.Up()
	case "down":
		if steps <= 0 {
			steps = 1
		}
		err = m.Steps(-steps)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	if err != nil {
		return err
	}

	version, dirty, verr := m.Version()
	if verr == nil {
		logger.WithFields(logrus.Fields{"version": version, "dirty": dirty}).Info("migrations applied")
	}
	return nil
}
