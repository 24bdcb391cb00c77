package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/tausug-confession/confession-backend/internal/repository"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), repository.ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})), repository.ErrDuplicate)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "42P01", Message: `relation "users" does not exist`}), repository.ErrNotProvisioned)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}
