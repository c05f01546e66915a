package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.NotNil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "profile not found",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: profile not found (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("loading profile: %w", ErrProfileNotFound)

	assert.True(t, errors.Is(wrapped, ErrProfileNotFound))
	assert.True(t, errors.Is(ErrDesignNotFound, ErrProfileNotFound), "same type matches")
	assert.False(t, errors.Is(wrapped, ErrUnauthorized))
}

func TestDomainError_WithDetail(t *testing.T) {
	detailed := ErrProfileNotFound.WithDetail("id", "42")

	assert.Equal(t, "42", detailed.Details["id"])
	assert.Empty(t, ErrProfileNotFound.Details, "sentinel must stay unchanged")
	assert.True(t, IsNotFoundError(detailed))
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", ErrDesignNotFound, ErrorTypeNotFound},
		{"unauthorized", ErrUnauthorized, ErrorTypeUnauthorized},
		{"internal", WrapError(ErrorTypeInternal, "query failed", errors.New("boom")), ErrorTypeInternal},
		{"validation", ErrInvalidDesignID, ErrorTypeValidation},
		{"forbidden", ErrNotDesignOwner, ErrorTypeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
			assert.Equal(t, tt.want, GetErrorType(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}

	assert.False(t, IsNotFoundError(errors.New("plain")))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}
