package db

import (
	"database/sql"
	"errors"
	"time"
)

// Get returns the value stored under key. The bool is false when the key
// has never been written.
func (db *DB) Get(key string) (string, bool, error) {
	var value string
	err := db.get.QueryRow(key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set overwrites the value stored under key
func (db *DB) Set(key, value string) error {
	_, err := db.set.Exec(key, value, time.Now().UTC())
	return err
}

// UpdatedAt returns when key was last written
func (db *DB) UpdatedAt(key string) (time.Time, bool, error) {
	var t time.Time
	err := db.updated.QueryRow(key).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
