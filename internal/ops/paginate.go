package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/delgists/internal/api"
	"github.com/hpungsan/delgists/internal/errors"
	"github.com/hpungsan/delgists/internal/gist"
)

// PageFetcher is the narrow client surface the paginator needs.
type PageFetcher interface {
	ListGists(ctx context.Context, uri string) (*api.GistPage, error)
}

// FetchAll fetches every page of the listing starting at firstURI, following
// the next relation of each response's Link header until there is none.
// Requests are sequential since each next URI is only known after the
// previous response.
func FetchAll(ctx context.Context, fetcher PageFetcher, firstURI string) ([]gist.Gist, error) {
	listing := []gist.Gist{}
	visited := map[string]bool{}

	uri := firstURI
	for {
		visited[uri] = true

		page, err := fetcher.ListGists(ctx, uri)
		if err != nil {
			return nil, err
		}
		listing = append(listing, page.Gists...)

		// Link may arrive as several field lines; together they form one list.
		next, ok := api.ParseNextLink(strings.Join(page.Header.Values("Link"), ", "))
		if !ok {
			return listing, nil
		}
		if visited[next] {
			return nil, errors.NewLinkCycle(next)
		}
		uri = next
	}
}
