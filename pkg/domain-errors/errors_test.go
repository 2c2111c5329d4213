package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("lookup: %w", New(CodeNotFound, "resource not found"))

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeMissingParameter))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeMissingParameter, CodeOf(New(CodeMissingParameter, "resource is required")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("cause")
	err := Wrap(cause, CodeNotFound, "resource not found")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "not_found: resource not found: cause", err.Error())
}
