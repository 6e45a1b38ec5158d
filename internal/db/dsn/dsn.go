// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
)

// Create builds the Data Source Name for the configured engine.
func Create(cfg *config.Config) string {
	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		return Postgres(&cfg.DB)
	case config.EngineSQLite:
		return SQLite(&cfg.DB)
	default:
		return MySQL(&cfg.DB)
	}
}

// MySQL returns a go-sql-driver DSN, e.g. user:pass@tcp(host:3306)/name?parseTime=True.
func MySQL(db *config.DB) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.Extras,
	)
}

// Postgres returns a keyword/value DSN. Extras is appended as is, e.g. "sslmode=disable".
func Postgres(db *config.DB) string {
	out := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		db.Host,
		db.Port,
		db.User,
		db.Password,
		db.Name,
	)

	if db.Extras != "" {
		out += " " + db.Extras
	}

	return out
}

// SQLite returns the database file name. Extras become the query string.
func SQLite(db *config.DB) string {
	if db.Extras == "" {
		return db.Name
	}

	sep := "?"
	if strings.Contains(db.Name, "?") {
		sep = "&"
	}

	return db.Name + sep + db.Extras
}
