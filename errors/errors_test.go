package errors_test

import (
	"fmt"
	"testing"

	"github.com/29next/devdocs/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const errTest = errors.Error("test error")

func TestError_Is_Success(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		target   error
		expected bool
	}{
		{
			name:     "exact match",
			target:   errors.Error("test error"),
			expected: true,
		},
		{
			name:     "message with separator",
			target:   errors.New("test error -- some cause"),
			expected: true,
		},
		{
			name:     "different error",
			target:   errors.Error("other error"),
			expected: false,
		},
		{
			name:     "prefix without separator",
			target:   errors.New("test error but different"),
			expected: false,
		},
		{
			name:     "nil target",
			target:   nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, errTest.Is(tt.target))
		})
	}
}

func TestError_Wrap_Success(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		cause       error
		expectedMsg string
	}{
		{
			name:        "with cause",
			cause:       errors.New("original cause"),
			expectedMsg: "test error -- original cause",
		},
		{
			name:        "nil cause",
			cause:       nil,
			expectedMsg: "test error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := errTest.Wrap(tt.cause)
			assert.Equal(t, tt.expectedMsg, wrapped.Error())
			assert.ErrorIs(t, wrapped, errTest)
		})
	}
}

func TestError_Wrapf_KeepsCauseChain(t *testing.T) {
	t.Parallel()

	cause := errors.Error("inner")
	err := errTest.Wrapf("while resolving %s: %w", "User", cause)

	assert.Equal(t, "test error -- while resolving User: inner", err.Error())
	assert.ErrorIs(t, err, errTest)
	assert.ErrorIs(t, err, cause)
}

func TestError_As_Success(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", errTest.Wrap(errors.New("cause")))

	var target errors.Error
	require.True(t, errors.As(err, &target))
	assert.Equal(t, errTest, target)

	var notError *string
	assert.False(t, errTest.As(notError))
}

func TestUnwrapErrors_Success(t *testing.T) {
	t.Parallel()

	a := errors.New("a")
	b := errors.New("b")

	assert.Nil(t, errors.UnwrapErrors(nil))
	assert.Equal(t, []error{a}, errors.UnwrapErrors(a))
	assert.Equal(t, []error{a, b}, errors.UnwrapErrors(errors.Join(a, b)))
}
