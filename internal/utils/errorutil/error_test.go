package errorutil

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "ignored"))

	base := errors.New("execution reverted")
	err := WrapError(base, "stake of %s failed", "1.5")
	assert.EqualError(t, err, "stake of 1.5 failed: execution reverted")
	assert.ErrorIs(t, err, base)
}

func TestHandleError(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	HandleError(log, nil, "nothing")
	assert.Zero(t, buf.Len())

	HandleError(log, errors.New("boom"), "Claim failed")
	assert.Contains(t, buf.String(), "Claim failed")
	assert.Contains(t, buf.String(), "boom")
}
