// Package database provides the SQLite connection used to persist select
// entity registrations.
//
// WAL mode allows concurrent reads while the registry writes. Schema
// changes are versioned migration files embedded by the migrations package
// and applied at startup with Migrate.
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
//
// Migrations are additive: new columns are nullable or carry a default,
// and every .up.sql has a matching .down.sql.
package database
