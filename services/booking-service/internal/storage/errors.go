package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned by every store when no row matches the id.
var ErrNotFound = errors.New("appointment not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}
