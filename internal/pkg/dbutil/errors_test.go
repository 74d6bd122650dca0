package dbutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"pg error", &pgconn.PgError{Code: "23505"}, true},
		{"pg other code", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite text", errors.New("UNIQUE constraint failed: users.username"), true},
		{"postgres text", errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}

func TestViolatedColumn(t *testing.T) {
	assert.Equal(t, "email", ViolatedColumn(errors.New("UNIQUE constraint failed: users.email"), "username", "email"))
	assert.Equal(t, "username", ViolatedColumn(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"}, "username", "email"))
	assert.Equal(t, "", ViolatedColumn(errors.New("boom"), "username"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFound(errors.New("other")))
}
