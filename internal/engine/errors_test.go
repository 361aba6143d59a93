package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserErrorIsAStorageError(t *testing.T) {
	cause := errors.New("bad extension")
	err := error(&UserError{Message: "unsupported file type: .xyz", Err: cause})

	// user-facing failures still classify as ingestion-fatal
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "unsupported file type")

	msg, ok := UserMessage(err)
	require.True(t, ok)
	assert.Equal(t, "unsupported file type: .xyz", msg)

	assert.ErrorIs(t, err, cause)
}

func TestUserMessageIgnoresPlainStorageErrors(t *testing.T) {
	err := error(NewStorageError("write", errors.New("disk full")))

	_, ok := UserMessage(err)
	assert.False(t, ok)

	var se *StorageError
	require.ErrorAs(t, fmt.Errorf("ingesting: %w", err), &se)
	assert.Equal(t, "write", se.Op)
}
