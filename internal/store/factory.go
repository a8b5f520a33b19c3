package store

import (
	"fmt"

	"github.com/amurg-ai/streamkit/internal/config"
)

// New builds a Store from cfg.Driver ("sqlite" or "postgres"), the same
// driver-selected construction as the teacher's store factory.
func New(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres":
		return NewPostgres(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
