package mysql

import (
	"errors"

	gomysql "github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the repositories translate into domain errors.
const (
	errDuplicateEntry  = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
)

func isMySQLError(err error, number uint16) bool {
	var myErr *gomysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == number
}
