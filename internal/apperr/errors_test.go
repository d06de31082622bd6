package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound_Is(t *testing.T) {
	err := NotFound("module", "m1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, `module not found: "m1"`, err.Error())

	var nf *NotFoundError
	assert.True(t, errors.As(err, &nf))
	assert.Equal(t, "module", nf.Kind)
}

func TestInvalidInput_Is(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := InvalidInput(cause)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("disk full")
	err := &PersistenceError{Op: "save", Key: "progress", Err: cause}
	assert.True(t, errors.Is(err, ErrPersistenceUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, `persistence save "progress": disk full`, err.Error())

	noKey := &PersistenceError{Op: "clear", Err: cause}
	assert.Equal(t, "persistence clear: disk full", noKey.Error())
}
