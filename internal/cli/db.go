package cli

import (
	"github.com/apim-labs/punchlist/internal/config"
	"github.com/apim-labs/punchlist/internal/store"
)

// openStore opens the database for a one-shot command, falling back to the
// configured path when the --db flag was left empty.
func openStore(dbPath string, cfg config.Config) (*store.Store, error) {
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	st, err := store.Open(dbPath, store.Options{})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
