package jsonval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeIsCanonical(t *testing.T) {
	a, err := Encode(map[string]any{"b": 1, "a": 2})
	require.NoError(t, err)
	b, err := Encode(map[string]any{"a": 2, "b": 1})
	require.NoError(t, err)
	assert.Equal(t, a, b, "key order must not affect the encoded bytes")
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []any{
		nil,
		"hello",
		int64(42),
		true,
		[]any{int64(1), "two", nil},
		map[string]any{"nested": map[string]any{"x": int64(1)}},
	}
	for _, v := range values {
		s, err := Encode(v)
		require.NoError(t, err)
		got, err := Decode(s)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestMustEncodeDoesNotPanicOnPlainValues(t *testing.T) {
	assert.NotPanics(t, func() {
		MustEncode(map[string]any{"ok": true})
	})
}
