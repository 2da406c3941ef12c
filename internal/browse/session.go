package browse

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpungsan/delgists/internal/api"
	"github.com/hpungsan/delgists/internal/console"
	"github.com/hpungsan/delgists/internal/db"
	"github.com/hpungsan/delgists/internal/errors"
	"github.com/hpungsan/delgists/internal/gist"
	"github.com/hpungsan/delgists/internal/ops"
)

// State is a step of the interactive loop.
type State int

const (
	StateViewing State = iota
	StateAwaitingSelection
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateViewing:
		return "viewing"
	case StateAwaitingSelection:
		return "awaiting_selection"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Menu keys.
const (
	KeyPrevious = "p"
	KeyNext     = "n"
	KeyDelete   = "d"
	KeyQuit     = "q"
)

// Client is the API surface a session needs.
type Client interface {
	ops.PageFetcher
	ops.Deleter
	RateLimit() api.RateLimit
}

// Options configures a Session.
type Options struct {
	Client   Client
	Console  *console.Console
	Logger   *logrus.Logger
	PageSize int
	// Journal records deleted gists; nil disables it.
	Journal *sql.DB
	// APIRoot is stored with journal entries.
	APIRoot string
	// Now is the clock for journal timestamps (defaults to time.Now).
	Now func() time.Time
}

// Session owns the state of one interactive run: the paged view, the
// console, and the client used for every remote call.
type Session struct {
	client   Client
	console  *console.Console
	logger   *logrus.Logger
	pageSize int
	journal  *sql.DB
	apiRoot  string
	now      func() time.Time

	view  *ops.PagedView
	state State
}

// NewSession creates a session. Nothing is fetched until Run or Load.
func NewSession(opts Options) *Session {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = ops.DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		client:   opts.Client,
		console:  opts.Console,
		logger:   logger,
		pageSize: pageSize,
		journal:  opts.Journal,
		apiRoot:  opts.APIRoot,
		now:      now,
		state:    StateViewing,
	}
}

// View returns the paged view, or nil before Load.
func (s *Session) View() *ops.PagedView {
	return s.view
}

// State returns the current loop state.
func (s *Session) State() State {
	return s.state
}

// Load fetches the whole listing and partitions it into pages.
func (s *Session) Load(ctx context.Context) error {
	listing, err := ops.FetchAll(ctx, s.client, api.GistsPath)
	if err != nil {
		return err
	}
	view, err := ops.Partition(listing, s.pageSize)
	if err != nil {
		return err
	}
	s.view = view
	s.state = StateViewing
	s.logger.WithFields(logrus.Fields{"gists": len(listing), "pages": view.PageCount()}).Info("listing loaded")
	return nil
}

// Run fetches the listing and drives the menu loop until the user quits,
// input ends, or ctx is canceled. Cancellation and end of input are a
// graceful exit and return nil; transport and protocol failures are returned.
func (s *Session) Run(ctx context.Context) error {
	if err := s.Load(ctx); err != nil {
		if interrupted(ctx, err) {
			s.state = StateTerminated
			return nil
		}
		return err
	}
	return s.Loop(ctx)
}

// Loop runs the menu loop over an already loaded view.
func (s *Session) Loop(ctx context.Context) error {
	if s.view == nil {
		return errors.NewInvalidRequest("listing not loaded")
	}

	for s.state != StateTerminated {
		var err error
		switch s.state {
		case StateViewing:
			err = s.showPage(ctx)
		case StateAwaitingSelection:
			err = s.awaitSelection(ctx)
		}
		if err != nil {
			if interrupted(ctx, err) || stderrors.Is(err, io.EOF) {
				s.state = StateTerminated
				return nil
			}
			return err
		}
	}
	return nil
}

// showPage renders the current page, reads a menu choice and applies it.
func (s *Session) showPage(ctx context.Context) error {
	s.render()

	choice, err := s.console.Menu(ctx, MenuOptions(s.view))
	if err != nil {
		return err
	}

	switch choice {
	case KeyPrevious:
		return s.navigate(s.view.Previous)
	case KeyNext:
		return s.navigate(s.view.Next)
	case KeyDelete:
		s.state = StateAwaitingSelection
	case KeyQuit:
		s.state = StateTerminated
	}
	return nil
}

func (s *Session) navigate(move func() error) error {
	if err := move(); err != nil {
		if errors.Is(err, errors.ErrOutOfRange) {
			s.console.Center(err.Error())
			return nil
		}
		return err
	}
	return nil
}

// awaitSelection reads a selection, deletes it and returns to viewing.
// Invalid input only prints a message; the page is left as it was.
func (s *Session) awaitSelection(ctx context.Context) error {
	s.state = StateViewing

	page := s.view.CurrentPage()
	raw, err := s.console.ReadLine(ctx, "Gist IDs/range: ")
	if err != nil {
		return err
	}

	sel, err := ops.ParseSelection(raw, len(page))
	if err != nil {
		if gErr, ok := errors.As(err); ok && gErr.Recoverable() {
			s.console.Center("ERROR: " + gErr.Message)
			return nil
		}
		return err
	}

	out, err := ops.DeleteSelected(ctx, s.client, ops.DeleteInput{Page: page, Selection: sel})
	if out != nil {
		if replaceErr := s.view.ReplaceCurrent(out.Page); replaceErr != nil {
			return replaceErr
		}
		s.record(ctx, out.Deleted)
		if len(out.Deleted) > 0 {
			s.console.Center(fmt.Sprintf("Deleted %d gist(s)", len(out.Deleted)))
		}
	}
	if err == nil {
		return nil
	}

	if errors.Is(err, errors.ErrPartialDeletion) {
		remaining := ops.SelectionSet(errors.Remaining(err)).OneBased()
		s.logger.WithError(err).WithField("remaining", remaining).Warn("batch deletion stopped")
		s.console.Center(fmt.Sprintf("ERROR: deletion stopped, not deleted: %s", joinInts(remaining)))
		if interrupted(ctx, err) {
			return err
		}
		if gErr, ok := errors.As(err); ok && gErr.Err != nil {
			s.console.Center(gErr.Err.Error())
		}
		return nil
	}
	if gErr, ok := errors.As(err); ok && gErr.Recoverable() {
		s.console.Center("ERROR: " + gErr.Message)
		return nil
	}
	return err
}

// record writes deleted gists to the journal. Journal failures are logged,
// never fatal: the remote deletions already happened.
func (s *Session) record(ctx context.Context, deleted []gist.Gist) {
	for _, g := range deleted {
		s.logger.WithFields(logrus.Fields{"gist_id": g.ID, "label": g.Label()}).Info("gist deleted")
	}
	if s.journal == nil || len(deleted) == 0 {
		return
	}

	at := s.now()
	entries := make([]db.Deletion, len(deleted))
	for i, g := range deleted {
		entries[i] = db.NewDeletion(g, s.apiRoot, at)
	}
	if err := db.RecordDeletions(context.WithoutCancel(ctx), s.journal, entries); err != nil {
		s.logger.WithError(err).Error("failed to record deletions")
	}
}

func (s *Session) render() {
	title := "No gists"
	if s.view.PageCount() > 0 {
		title = fmt.Sprintf("Page %d/%d (%d gists)", s.view.Cursor()+1, s.view.PageCount(), s.view.Total())
	}
	if rl := s.client.RateLimit(); rl.Known {
		title += fmt.Sprintf(" | API %d/%d", rl.Remaining, rl.Limit)
	}
	s.console.RenderPage(title, s.view.CurrentPage())
}

// MenuOptions returns the actions available on the current page. Previous
// and next are offered only when such a page exists.
func MenuOptions(view *ops.PagedView) []console.MenuOption {
	var options []console.MenuOption
	if view.HasPrevious() {
		options = append(options, console.MenuOption{Key: KeyPrevious, Title: "Previous Page"})
	}
	options = append(options,
		console.MenuOption{Key: KeyDelete, Title: "Delete Gists"},
		console.MenuOption{Key: KeyQuit, Title: "Quit"},
	)
	if view.HasNext() {
		options = append(options, console.MenuOption{Key: KeyNext, Title: "Next Page"})
	}
	return options
}

// interrupted reports whether err came from ctx being canceled.
func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded))
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}
