package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	err := NewError(CategoryBuild, "build failed").Build()
	assert.Equal(t, CategoryBuild, err.Category)
	assert.Equal(t, SeverityError, err.Severity)
	assert.Equal(t, "build: build failed", err.Error())
}

func TestWrapErrorUnwraps(t *testing.T) {
	cause := stderrors.New("exit status 2")
	err := WrapError(cause, CategoryToolchain, "pip upgrade failed").
		WithContext("interpreter", "python3").
		Build()

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "interpreter=python3")
	assert.Contains(t, err.Error(), "exit status 2")
}

func TestCategoryOf(t *testing.T) {
	inner := NewError(CategoryFileSystem, "docs dir missing").Build()
	wrapped := fmt.Errorf("resolve workspace: %w", inner)

	assert.Equal(t, CategoryFileSystem, CategoryOf(wrapped))
	assert.Equal(t, ErrorCategory(""), CategoryOf(stderrors.New("plain")))
}

func TestContextIsCopiedOnBuild(t *testing.T) {
	b := NewError(CategoryValidation, "bad value").WithContext("key", 1)
	first := b.Build()
	b.WithContext("key", 2)
	second := b.Build()

	assert.Equal(t, 1, first.Context["key"])
	assert.Equal(t, 2, second.Context["key"])
}
