package repository

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// uniqueViolation reports whether the error is a UNIQUE constraint
// failure touching the named column. sqlite reports the offending
// column as "table.column" in the error message.
func uniqueViolation(err error, column string) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.ExtendedCode != sqlite3.ErrConstraintUnique &&
		se.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
		return false
	}
	return strings.Contains(se.Error(), column)
}

// fkViolation reports whether the error is a FOREIGN KEY constraint
// failure (referential integrity: rows still reference the target).
func fkViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintForeignKey ||
		se.ExtendedCode == sqlite3.ErrConstraintTrigger
}
