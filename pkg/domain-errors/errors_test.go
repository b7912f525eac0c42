package domainerrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "veriscreen/pkg/domain-errors"
	"veriscreen/pkg/platform/sentinel"
)

func TestNewCarriesCode(t *testing.T) {
	err := dErrors.New(dErrors.CodeValidation, "dob is required")

	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.False(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Equal(t, "dob is required", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	err := dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "evaluation not found")

	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.Equal(t, "evaluation not found: not found", err.Error())
}

func TestHasCodeWalksChain(t *testing.T) {
	inner := dErrors.New(dErrors.CodeConflict, "duplicate evaluation")
	outer := dErrors.Wrap(inner, dErrors.CodeInternal, "save failed")

	assert.True(t, dErrors.HasCode(outer, dErrors.CodeInternal))
	assert.True(t, dErrors.HasCode(outer, dErrors.CodeConflict))
	assert.False(t, dErrors.HasCode(outer, dErrors.CodeNotFound))
}

func TestHasCodeOnForeignError(t *testing.T) {
	assert.False(t, dErrors.HasCode(fmt.Errorf("plain"), dErrors.CodeInternal))
	assert.False(t, dErrors.HasCode(nil, dErrors.CodeInternal))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, dErrors.CodeInternal, dErrors.CodeOf(errors.New("boom")))
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(dErrors.New(dErrors.CodeNotFound, "gone")))
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeBadRequest:         http.StatusBadRequest,
		dErrors.CodeValidation:         http.StatusBadRequest,
		dErrors.CodeInvalidInput:       http.StatusBadRequest,
		dErrors.CodeUnauthorized:       http.StatusUnauthorized,
		dErrors.CodeForbidden:          http.StatusForbidden,
		dErrors.CodeNotFound:           http.StatusNotFound,
		dErrors.CodeConflict:           http.StatusConflict,
		dErrors.CodeInvariantViolation: http.StatusInternalServerError,
		dErrors.CodeInternal:           http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, dErrors.HTTPStatus(code), "code %s", code)
	}
}

func TestErrorIsComparesCodeAndMessage(t *testing.T) {
	err := dErrors.New(dErrors.CodeUnauthorized, "invalid token")

	assert.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
	assert.NotErrorIs(t, err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
	assert.NotErrorIs(t, err, dErrors.New(dErrors.CodeForbidden, "invalid token"))
}
