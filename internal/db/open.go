package db

import (
	"context"
	"fmt"
)

// Index drivers.
const (
	DriverSQLite   = "sqlite"
	DriverLibSQL   = "libsql"
	DriverPostgres = "postgres"
)

// Open connects to the lineup index selected by driver and makes sure its
// table exists.
func Open(ctx context.Context, driver, dsn, authToken string) (Index, error) {
	var (
		idx Index
		err error
	)
	switch driver {
	case DriverSQLite, "":
		if dsn == "" {
			dsn = "lineup_index.db"
		}
		idx, err = OpenSQLite(dsn)
	case DriverLibSQL:
		idx, err = NewTursoClient(dsn, authToken)
	case DriverPostgres:
		idx, err = New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown lineup store driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := idx.CreateTables(ctx); err != nil {
		idx.Close()
		return nil, fmt.Errorf("create lineup tables: %w", err)
	}
	return idx, nil
}
