package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeToHTTPStatus(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{CodeInvalidParam, http.StatusBadRequest},
		{CodeIdentifierMismatch, http.StatusBadRequest},
		{CodeProjectNotFound, http.StatusNotFound},
		{CodeChapterNotFound, http.StatusNotFound},
		{CodeGatewayUnavailable, http.StatusServiceUnavailable},
		{CodeTooManyRequests, http.StatusTooManyRequests},
		{CodeStorageError, http.StatusInternalServerError},
		{CodeCacheError, http.StatusInternalServerError},
		{CodeInitialGenerationFailed, http.StatusInternalServerError},
		{CodeChapterGenerationFailed, http.StatusInternalServerError},
		{CodeMalformedOutput, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, New(c.code, "x").HTTPStatus, "code %s", c.code)
	}
}

func TestWithDetailDoesNotMutateSentinel(t *testing.T) {
	detailed := ErrProjectNotFound.WithDetail("id=abc")

	assert.Equal(t, "id=abc", detailed.Detail)
	assert.Empty(t, ErrProjectNotFound.Detail, "预定义错误不应被修改")
	assert.Equal(t, CodeProjectNotFound, detailed.Code)
}

func TestWithErrorDoesNotMutateSentinel(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := ErrGatewayError.WithError(cause)

	require.ErrorIs(t, wrapped, cause)
	assert.Nil(t, ErrGatewayError.Err)
}

func TestUnwrapChain(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, CodeInitialGenerationFailed, "stage one failed")

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "4001")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("handler: %w", ErrChapterNotFound.WithDetail("chapter=3"))
	assert.ErrorIs(t, err, ErrChapterNotFound)
	assert.NotErrorIs(t, err, ErrProjectNotFound)
}

func TestHasCode(t *testing.T) {
	inner := Wrap(stderrors.New("dial tcp"), CodeGatewayUnavailable, "provider unreachable")
	outer := Wrap(inner, CodeInitialGenerationFailed, "stage one failed")

	assert.True(t, HasCode(outer, CodeInitialGenerationFailed))
	assert.True(t, HasCode(outer, CodeGatewayUnavailable))
	assert.False(t, HasCode(outer, CodeChapterNotFound))
	assert.False(t, HasCode(nil, CodeUnknown))
}

func TestAsAppErrorWrapsForeignError(t *testing.T) {
	appErr := AsAppError(stderrors.New("plain"))
	assert.Equal(t, CodeUnknown, appErr.Code)

	same := AsAppError(ErrProjectNotFound)
	assert.Equal(t, CodeProjectNotFound, same.Code)
}
