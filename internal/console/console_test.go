package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	delerrors "github.com/hpungsan/delgists/internal/errors"
	"github.com/hpungsan/delgists/internal/gist"
)

func newTestConsole(input string) (*Console, *bytes.Buffer) {
	var out bytes.Buffer
	c := New(strings.NewReader(input), &out)
	c.SetWidth(40)
	return c, &out
}

func TestBanner(t *testing.T) {
	c, out := newTestConsole("")
	c.Banner("Welcome to DelGists")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Repeat("-", 40), lines[0])
	assert.Equal(t, strings.Repeat("-", 40), lines[2])
	assert.Equal(t, "Welcome to DelGists", strings.TrimSpace(lines[1]))
	assert.True(t, strings.HasPrefix(lines[1], "          "), "banner text should be centered: %q", lines[1])
}

func TestReadLine(t *testing.T) {
	c, _ := newTestConsole("first\r\nsecond\nlast")
	ctx := context.Background()

	for _, want := range []string{"first", "second", "last"} {
		got, err := c.ReadLine(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := c.ReadLine(ctx, "")
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLine_CanceledWhileBlocked(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	c := New(pr, &out)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.ReadLine(ctx, "Action: ")
	assert.ErrorIs(t, err, context.Canceled)

	// the abandoned read is delivered to the next caller
	go func() { _, _ = pw.Write([]byte("q\n")) }()
	got, err := c.ReadLine(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "q", got)
}

func TestMenu_RetriesUntilValid(t *testing.T) {
	c, out := newTestConsole("x\n\nN\n")
	options := []MenuOption{{Key: "d", Title: "Delete Gists"}, {Key: "q", Title: "Quit"}, {Key: "n", Title: "Next Page"}}

	choice, err := c.Menu(context.Background(), options)
	require.NoError(t, err)
	assert.Equal(t, "n", choice)

	text := out.String()
	assert.Contains(t, text, "ERROR: Unknown choice: x")
	assert.Equal(t, 3, strings.Count(text, "| [d] Delete Gists | [q] Quit | [n] Next Page |"))
}

func TestMenu_EOF(t *testing.T) {
	c, _ := newTestConsole("zzz\n")
	_, err := c.Menu(context.Background(), []MenuOption{{Key: "q", Title: "Quit"}})
	assert.ErrorIs(t, err, io.EOF)
}

func TestMenuText(t *testing.T) {
	got := MenuText([]MenuOption{{Key: "p", Title: "Previous Page"}, {Key: "q", Title: "Quit"}})
	assert.Equal(t, "| [p] Previous Page | [q] Quit |", got)
}

func TestRenderPage(t *testing.T) {
	c, out := newTestConsole("")
	page := make([]gist.Gist, 11)
	for i := range page {
		page[i] = gist.Gist{ID: "x", HTMLURL: "https://gist.github.com/x"}
	}
	page[0].Description = "dotfiles"
	page[10].Description = strings.Repeat("long description ", 10)

	c.RenderPage("Page 1/1", page)
	text := out.String()

	assert.Contains(t, text, "[ 1] dotfiles\n")
	assert.Contains(t, text, "[ 2] https://gist.github.com/x\n")
	assert.Contains(t, text, "[11] long description")
	for _, line := range strings.Split(text, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 40, "line exceeds width: %q", line)
	}
}

func TestRenderPage_Empty(t *testing.T) {
	c, out := newTestConsole("")
	c.RenderPage("", nil)
	assert.Contains(t, out.String(), "(no gists)")
}

func TestPromptCredentials(t *testing.T) {
	c, out := newTestConsole(" octocat \nghp_token\n")

	creds, err := c.PromptCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", creds.User)
	assert.Equal(t, "ghp_token", creds.Secret)
	assert.Contains(t, out.String(), "Username: ")
}

func TestPromptCredentials_Missing(t *testing.T) {
	c, _ := newTestConsole("octocat\n\n")

	_, err := c.PromptCredentials(context.Background())
	assert.True(t, delerrors.Is(err, delerrors.ErrInvalidRequest))
}

func TestPromptCredentials_EOF(t *testing.T) {
	c, _ := newTestConsole("")

	_, err := c.PromptCredentials(context.Background())
	assert.True(t, errors.Is(err, io.EOF))
}
