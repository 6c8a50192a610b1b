package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodePredicates(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("bad", nil)))
	assert.True(t, IsNotFound(NewNotFound("ticket", nil)))
	assert.True(t, IsAuthorization(NewAuthorizationError("no")))
	assert.True(t, IsStorage(NewStorageError(errors.New("down"))))

	assert.False(t, IsValidation(NewNotFound("ticket", nil)))
	assert.False(t, IsNotFound(nil))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("seed ticket: %w", NewValidationError("bad", nil))
	assert.True(t, IsValidation(wrapped))
}

func TestToDomainError(t *testing.T) {
	require.Nil(t, ToDomainError(nil))

	validation := ToDomainError(NewValidationError("bad", map[string]any{"field": "x"}))
	assert.Equal(t, CodeValidation, validation.Code)
	assert.Equal(t, http.StatusBadRequest, validation.HTTPStatus)

	noRows := ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, CodeNotFound, noRows.Code)
	assert.Equal(t, http.StatusNotFound, noRows.HTTPStatus)

	unknown := ToDomainError(errors.New("boom"))
	assert.Equal(t, CodeInternal, unknown.Code)
	assert.Equal(t, http.StatusInternalServerError, unknown.HTTPStatus)
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageError(cause)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "storage operation failed")
}
