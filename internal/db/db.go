package db

import (
	"strings"

	"github.com/jmoiron/sqlx"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

func Connect(driverName, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	// every sqlite connection to :memory: opens its own empty database
	if driverName == DriverSQLite && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}
