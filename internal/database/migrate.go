package database

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/stokaro/ptah/dbschema"
	"github.com/stokaro/ptah/migration/migrator"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrations returns the schema files shipped with the binary, named
// NNNNNNNNNN_description.(up|down).sql.
func Migrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrator runs the embedded schema files against one database connection.
type Migrator struct {
	*migrator.Migrator
	conn *dbschema.DatabaseConnection
}

// OpenMigrator connects to databaseURL and loads the embedded migrations.
// The caller must Close the returned Migrator.
func OpenMigrator(databaseURL string) (*Migrator, error) {
	conn, err := dbschema.ConnectToDatabase(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect for migrations: %w", err)
	}

	m, err := migrator.NewFSMigrator(conn, Migrations())
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	return &Migrator{Migrator: m, conn: conn}, nil
}

func (m *Migrator) Close() error {
	return m.conn.Close()
}
