package httpkit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPgErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		undefined bool
		unique    bool
	}{
		{"undefined table", &pgconn.PgError{Code: "42P01"}, true, false},
		{"wrapped unique violation", fmt.Errorf("insert job: %w", &pgconn.PgError{Code: "23505"}), false, true},
		{"other sqlstate", &pgconn.PgError{Code: "40001"}, false, false},
		{"plain error", errors.New("connection refused"), false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUndefinedTable(tt.err); got != tt.undefined {
				t.Errorf("IsUndefinedTable = %v, want %v", got, tt.undefined)
			}
			if got := IsUniqueViolation(tt.err); got != tt.unique {
				t.Errorf("IsUniqueViolation = %v, want %v", got, tt.unique)
			}
		})
	}
}
