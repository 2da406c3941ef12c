package ops

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hpungsan/delgists/internal/api"
	"github.com/hpungsan/delgists/internal/errors"
	"github.com/hpungsan/delgists/internal/gist"
)

// makeGists returns n gists with ids g0..g(n-1).
func makeGists(n int) []gist.Gist {
	gists := make([]gist.Gist, n)
	for i := range gists {
		gists[i] = gist.Gist{
			ID:          fmt.Sprintf("g%d", i),
			Description: fmt.Sprintf("gist %d", i),
			HTMLURL:     fmt.Sprintf("https://gist.github.com/g%d", i),
		}
	}
	return gists
}

func ids(gists []gist.Gist) []string {
	out := make([]string, len(gists))
	for i, g := range gists {
		out[i] = g.ID
	}
	return out
}

// fakeFetcher serves pages keyed by uri.
type fakeFetcher struct {
	pages    map[string]*api.GistPage
	failOn   string
	requests []string
}

func (f *fakeFetcher) ListGists(_ context.Context, uri string) (*api.GistPage, error) {
	f.requests = append(f.requests, uri)
	if uri == f.failOn {
		return nil, errors.NewProtocol(http.MethodGet, uri, http.StatusBadGateway, http.StatusOK)
	}
	page, ok := f.pages[uri]
	if !ok {
		return nil, errors.NewTransport(http.MethodGet, uri, fmt.Errorf("no such page"))
	}
	return page, nil
}

// pagedFetcher serves listing in chunks of perPage, linking page N to N+1.
func pagedFetcher(listing []gist.Gist, perPage int) *fakeFetcher {
	f := &fakeFetcher{pages: map[string]*api.GistPage{}}
	uri := api.GistsPath
	for start, n := 0, 1; ; start, n = start+perPage, n+1 {
		end := min(start+perPage, len(listing))
		header := http.Header{}
		next := fmt.Sprintf("https://api.github.com/gists?page=%d", n+1)
		if end < len(listing) {
			header.Set("Link", fmt.Sprintf(`<%s>; rel="next", <https://api.github.com/gists?page=99>; rel="last"`, next))
		}
		f.pages[uri] = &api.GistPage{Gists: listing[start:end], Header: header}
		if end >= len(listing) {
			return f
		}
		uri = next
	}
}

// fakeDeleter records delete calls and fails on the ids in fail.
type fakeDeleter struct {
	calls []string
	fail  map[string]error
}

func (d *fakeDeleter) DeleteGist(_ context.Context, id string) error {
	d.calls = append(d.calls, id)
	if err, ok := d.fail[id]; ok {
		return err
	}
	return nil
}
