package ops

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/delgists/internal/api"
	"github.com/hpungsan/delgists/internal/errors"
)

func TestFetchAll_FollowsNextLinks(t *testing.T) {
	listing := makeGists(45)
	fetcher := pagedFetcher(listing, 20)

	got, err := FetchAll(context.Background(), fetcher, api.GistsPath)
	require.NoError(t, err)

	assert.Equal(t, ids(listing), ids(got))
	assert.Equal(t, []string{
		api.GistsPath,
		"https://api.github.com/gists?page=2",
		"https://api.github.com/gists?page=3",
	}, fetcher.requests)
}

func TestFetchAll_SinglePage(t *testing.T) {
	fetcher := pagedFetcher(makeGists(3), 30)

	got, err := FetchAll(context.Background(), fetcher, api.GistsPath)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Len(t, fetcher.requests, 1)
}

func TestFetchAll_EmptyListing(t *testing.T) {
	fetcher := pagedFetcher(nil, 30)

	got, err := FetchAll(context.Background(), fetcher, api.GistsPath)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchAll_PageFailureAborts(t *testing.T) {
	fetcher := pagedFetcher(makeGists(45), 20)
	fetcher.failOn = "https://api.github.com/gists?page=2"

	got, err := FetchAll(context.Background(), fetcher, api.GistsPath)
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, errors.ErrProtocol))
	assert.Len(t, fetcher.requests, 2)
}

func TestFetchAll_TransportFailure(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*api.GistPage{}}

	_, err := FetchAll(context.Background(), fetcher, api.GistsPath)
	assert.True(t, errors.Is(err, errors.ErrTransport))
}

func TestFetchAll_LinkCycle(t *testing.T) {
	header := http.Header{}
	header.Set("Link", `<gists>; rel="next"`)
	fetcher := &fakeFetcher{pages: map[string]*api.GistPage{
		api.GistsPath: {Gists: makeGists(2), Header: header},
	}}

	_, err := FetchAll(context.Background(), fetcher, api.GistsPath)
	assert.True(t, errors.Is(err, errors.ErrProtocol))
	assert.Len(t, fetcher.requests, 1)
}

func TestFetchAll_LinkSplitAcrossFieldLines(t *testing.T) {
	listing := makeGists(5)
	first := http.Header{}
	first.Add("Link", `<https://api.github.com/gists?page=9>; rel="last"`)
	first.Add("Link", `<https://api.github.com/gists?page=2>; rel="next"`)
	fetcher := &fakeFetcher{pages: map[string]*api.GistPage{
		api.GistsPath: {Gists: listing[:3], Header: first},
		"https://api.github.com/gists?page=2": {Gists: listing[3:], Header: http.Header{}},
	}}

	got, err := FetchAll(context.Background(), fetcher, api.GistsPath)
	require.NoError(t, err)
	assert.Equal(t, ids(listing), ids(got))
	assert.Equal(t, []string{api.GistsPath, "https://api.github.com/gists?page=2"}, fetcher.requests)
}
