package home

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/rackmate/internal/templ/shared"
)

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	err := Page(PageData{
		SignUpPath: "/signup",
		Flash:      &shared.Flash{Type: shared.FlashSuccess, Message: "Account created."},
	}).Render(context.Background(), &buf)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `href="/signup"`)
	assert.Contains(t, buf.String(), "Account created.")
	assert.Contains(t, buf.String(), "<title>Welcome | RackMate</title>")
}
