package data

import (
	"database/sql"
	"embed"
	"os"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// DataFileName is the default Sqlite database file name.
const DataFileName string = "scorecards.db"

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")

	// ErrNotFound is returned when no scorecard exists for an id.
	ErrNotFound = errors.New("scorecard not found")
)

// Init creates the database file and its schema if it does not exist yet.
// Calling it on an existing database is a no-op.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	if _, err := os.Stat(dbFilePath); errors.Is(err, os.ErrNotExist) {
		db, err := GetDB(dbFilePath)
		if err != nil {
			return errors.Wrapf(err, "error opening database: %s", dbFilePath)
		}
		defer db.Close()

		b, err := f.ReadFile("sql/ddl.sql")
		if err != nil {
			return errors.Wrap(err, "failed to read the schema creation file")
		}
		if _, err := db.Exec(string(b)); err != nil {
			return errors.Wrapf(err, "failed to create database schema in: %s", dbFilePath)
		}
	}

	return nil
}

// GetDB opens the Sqlite database at path.
func GetDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", path)
	}
	return conn, nil
}
