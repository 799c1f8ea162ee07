package httpkit

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the job endpoints translate into API errors.
const (
	sqlStateUndefinedTable  = "42P01"
	sqlStateUniqueViolation = "23505"
)

// pgCode returns the SQLSTATE of the first Postgres error in err's chain.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUndefinedTable reports whether err comes from a query against a table
// that does not exist, i.e. the jobs schema was never migrated.
func IsUndefinedTable(err error) bool {
	return pgCode(err) == sqlStateUndefinedTable
}

// IsUniqueViolation reports whether err is a unique constraint violation,
// such as inserting a job id that is already taken.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == sqlStateUniqueViolation
}
