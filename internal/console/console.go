package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// Separator is the rune repeated across the screen around banners.
const Separator = "-"

type lineResult struct {
	line string
	err  error
}

// Console is a line-oriented terminal: it prints boxed banners, menus and
// pages, and reads one line of input at a time.
//
// Reads happen on a background goroutine so a blocked read can be abandoned
// when the context is canceled. At most one read is outstanding; a line typed
// after cancellation is handed to the next ReadLine.
type Console struct {
	in       *bufio.Reader
	inFile   *os.File
	out      io.Writer
	width    func() int
	requests chan struct{}
	results  chan lineResult
	started  bool
	pending  bool
}

// New creates a Console. When out is a terminal its width tracks the
// terminal size; otherwise DefaultWidth is used.
func New(in io.Reader, out io.Writer) *Console {
	c := &Console{
		in:       bufio.NewReader(in),
		out:      out,
		width:    func() int { return DefaultWidth },
		requests: make(chan struct{}),
		results:  make(chan lineResult, 1),
	}
	if f, ok := in.(*os.File); ok {
		c.inFile = f
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.width = func() int { return TerminalWidth(f) }
	}
	return c
}

// SetWidth fixes the rendering width.
func (c *Console) SetWidth(width int) {
	c.width = func() int { return width }
}

// Width returns the current rendering width.
func (c *Console) Width() int {
	return max(c.width(), 20)
}

// TerminalWidth returns the column count of f, falling back to $COLUMNS and
// then DefaultWidth.
func TerminalWidth(f *os.File) int {
	if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
		return w
	}
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return DefaultWidth
}

// Println writes a line of text.
func (c *Console) Println(text string) {
	fmt.Fprintln(c.out, text)
}

// Printf writes formatted text.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Rule writes a full-width separator line.
func (c *Console) Rule() {
	fmt.Fprintln(c.out, strings.Repeat(Separator, c.Width()))
}

// Center writes text centered on its own line.
func (c *Console) Center(text string) {
	fmt.Fprintln(c.out, strings.TrimRight(lipgloss.PlaceHorizontal(c.Width(), lipgloss.Center, text), " "))
}

// Banner writes text centered between two separator lines.
func (c *Console) Banner(text string) {
	c.Rule()
	c.Center(text)
	c.Rule()
}

// Truncate shortens s to fit in width display cells.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// promptPrefix places prompt so that the input cursor lands near the middle
// of the line.
func (c *Console) promptPrefix(prompt string) string {
	pad := (c.Width() - runewidth.StringWidth(prompt)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + prompt
}

// ReadLine prints prompt and reads one line without its line ending.
// It returns io.EOF when input is exhausted and ctx.Err() when ctx is done
// first.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	if !c.started {
		c.started = true
		go c.readLoop()
	}

	if prompt != "" {
		fmt.Fprint(c.out, c.promptPrefix(prompt))
	}

	if !c.pending {
		c.pending = true
		c.requests <- struct{}{}
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-c.results:
		c.pending = false
		return r.line, r.err
	}
}

func (c *Console) readLoop() {
	for range c.requests {
		line, err := c.in.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		c.results <- lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
	}
}

// ReadSecret reads a line without echo when input is a terminal, and falls
// back to ReadLine otherwise.
func (c *Console) ReadSecret(ctx context.Context, prompt string) (string, error) {
	if c.inFile == nil || c.pending || !term.IsTerminal(int(c.inFile.Fd())) {
		return c.ReadLine(ctx, prompt)
	}

	fd := int(c.inFile.Fd())
	state, err := term.GetState(fd)
	if err != nil {
		return c.ReadLine(ctx, prompt)
	}

	fmt.Fprint(c.out, c.promptPrefix(prompt))

	done := make(chan lineResult, 1)
	go func() {
		secret, err := term.ReadPassword(fd)
		done <- lineResult{line: string(secret), err: err}
	}()

	select {
	case <-ctx.Done():
		_ = term.Restore(fd, state)
		fmt.Fprintln(c.out)
		return "", ctx.Err()
	case r := <-done:
		fmt.Fprintln(c.out)
		return r.line, r.err
	}
}
