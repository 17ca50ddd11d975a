package sqlstore

import (
	"database/sql"
	"io/fs"
	"time"
)

// Dialect captures what differs between the SQL backends. Queries
// themselves are written once, with ? placeholders.
type Dialect interface {
	// Name identifies the backend in logs and errors.
	Name() string
	// FormatTime converts a timestamp into the value bound for its column.
	FormatTime(t time.Time) interface{}
	// IsUniqueViolation reports whether err came from a unique constraint.
	IsUniqueViolation(err error) bool
	// IsTxContention reports whether err means a concurrent transaction
	// won a lock (deadlock victim, lock wait timeout, busy database).
	IsTxContention(err error) bool
	// TxOptions are used for every WithinTx transaction.
	TxOptions() *sql.TxOptions
	// Migrations holds the NNNNNN_name.up.sql files for the backend.
	Migrations() fs.FS
}
