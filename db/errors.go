package db

import (
	"strings"

	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
)

// ErrDatabaseClosed is returned when operations are attempted on a closed
// database, typically during shutdown when the connection is closed before
// all goroutines have finished their work.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed checks if an error indicates the database connection is
// closed. Handles both wrapped ErrDatabaseClosed errors from this package and
// raw sql driver errors that contain "database is closed" in their message.
// The string matching fallback is necessary because the underlying sql driver
// returns its own error types that we cannot wrap at the source.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "database is closed") ||
		strings.Contains(errMsg, "sql: database is closed")
}
