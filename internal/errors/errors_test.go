package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
)

func TestWrap_PreservesCodeAndMeta(t *testing.T) {
	base := apperr.NotFoundf("creature %s not found", "abc").WithMeta("creature_id", "abc")

	wrapped := apperr.Wrap(base, "loading roster")
	require.NotNil(t, wrapped)

	assert.Equal(t, apperr.CodeNotFound, wrapped.Code)
	assert.True(t, apperr.IsNotFound(wrapped))
	assert.Equal(t, "abc", apperr.GetMeta(wrapped)["creature_id"])
	assert.Equal(t, "loading roster: creature abc not found", wrapped.Error())

	// meta is copied, not shared
	wrapped.WithMeta("owner_id", "u1")
	_, leaked := base.Meta["owner_id"]
	assert.False(t, leaked)
}

func TestWrap_ForeignErrorIsUnknown(t *testing.T) {
	wrapped := apperr.Wrap(errors.New("connection reset"), "saving creature")

	assert.Equal(t, apperr.CodeUnknown, apperr.GetCode(wrapped))
	assert.ErrorContains(t, wrapped, "connection reset")
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, apperr.Wrap(nil, "nothing"))
	assert.Nil(t, apperr.Wrapf(nil, "nothing %d", 1))
	assert.Nil(t, apperr.WrapWithCode(nil, apperr.CodeInternal, "nothing"))
}

func TestWrapWithCode(t *testing.T) {
	err := apperr.WrapWithCode(errors.New("boom"), apperr.CodeInternal, "redis")

	assert.Equal(t, apperr.CodeInternal, err.Code)
	assert.False(t, apperr.IsValidation(err))
	assert.True(t, errors.Is(err, err.Cause))
}

func TestIs_ThroughFmtWrapping(t *testing.T) {
	inner := apperr.Validation("creature is incomplete")
	outer := errors.Join(errors.New("first"), inner)

	assert.True(t, apperr.IsValidation(outer))
	assert.False(t, apperr.IsInvalidArgument(outer))
	assert.Nil(t, apperr.GetMeta(errors.New("plain")))
}
