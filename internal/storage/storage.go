// Package storage selects the user repository backend from configuration.
package storage

import (
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/storage/memory"
	"github.com/MrJamesThe3rd/tally/internal/storage/sqlstore"
	"github.com/MrJamesThe3rd/tally/internal/user"
)

// Open returns the configured repository and a function releasing it. SQL
// backends are migrated before use.
func Open(cfg *config.Config) (user.Repository, func(), error) {
	if cfg.Storage.Backend == config.BackendMemory {
		slog.Warn("using in-memory storage, data is lost on exit")
		return memory.New(), func() {}, nil
	}

	dialect, err := database.ParseDialect(cfg.Storage.Backend)
	if err != nil {
		return nil, nil, err
	}

	dsn := cfg.ConnectionString()

	if err := database.Migrate(dialect, dsn); err != nil {
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	db, err := database.New(dialect, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	return sqlstore.New(db, dialect), func() { db.Close() }, nil
}
