package apperror

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeDuplicateEntity, http.StatusConflict},
		{CodeValidation, http.StatusBadRequest},
		{CodeExpired, http.StatusGone},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeDeliveryFailed, http.StatusBadGateway},
		{CodeConflict, http.StatusConflict},
		{CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, MetadataFor(tt.code).HTTPStatus, "code %s", tt.code)
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, MetadataFor("SOMETHING_ELSE").HTTPStatus)
}

func TestErrorsIsMatchesCodeAndKind(t *testing.T) {
	err := fmt.Errorf("register: %w", Duplicate(KindDuplicateEmail, "email already registered"))

	assert.True(t, stderrors.Is(err, ErrDuplicateEntity))
	assert.True(t, stderrors.Is(err, New(CodeDuplicateEntity, "").WithKind(KindDuplicateEmail)))
	assert.False(t, stderrors.Is(err, New(CodeDuplicateEntity, "").WithKind(KindDuplicateUsername)))
	assert.False(t, stderrors.Is(err, ErrNotFound))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := Wrap(CodeDeliveryFailed, cause, "could not send activation email")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDeliveryFailed, CodeOf(err))
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestCodeOfForeignError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(stderrors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(stderrors.New("boom")))
	assert.Equal(t, KindTooShort, KindOf(Validation(KindTooShort, "password too short")))
}
