package ui

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputClass_ErrorOverridesBorder(t *testing.T) {
	plain := InputClass(false)
	invalid := InputClass(true)

	assert.Contains(t, plain, "border-gray-300")
	assert.NotContains(t, invalid, "border-gray-300")
	assert.Contains(t, invalid, "border-red-500")
}

func TestButtonClass_ExtraWins(t *testing.T) {
	got := ButtonClass(ButtonPrimary, "w-full", "px-6")

	assert.Contains(t, got, "w-full")
	assert.Contains(t, got, "px-6")
	assert.NotContains(t, got, "px-4")
}

func TestIcon(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Icon(IconEye, "h-4 w-4").Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, `aria-hidden="true"`)
	assert.Contains(t, out, "h-4 w-4")
	assert.NotContains(t, out, "h-5")

	buf.Reset()
	require.NoError(t, Icon("nope").Render(context.Background(), &buf))
	assert.Empty(t, buf.String())
}
