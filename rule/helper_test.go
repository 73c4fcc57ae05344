package rule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/dszqbsm/scrapetree/fetch"
	"github.com/dszqbsm/scrapetree/query"
	"github.com/stretchr/testify/require"
)

// countingFetcher 记录实际获取过的地址
type countingFetcher struct {
	next fetch.Fetcher
	mu   sync.Mutex
	urls []string
}

func (c *countingFetcher) Fetch(ctx context.Context, u *url.URL) (*query.Document, error) {
	c.mu.Lock()
	c.urls = append(c.urls, u.Path)
	c.mu.Unlock()
	return c.next.Fetch(ctx, u)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.FileServer(http.Dir("testdata")))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAgent(t *testing.T, opts ...Option) (*Agent, *countingFetcher) {
	t.Helper()
	counter := &countingFetcher{next: fetch.NewFetchService(fetch.BaseFetchType)}
	return NewAgent(append([]Option{WithFetcher(counter)}, opts...)...), counter
}

func getPage(t *testing.T, srv *httptest.Server, path string) *query.Document {
	t.Helper()
	u, err := url.Parse(srv.URL + path)
	require.NoError(t, err)
	doc, err := fetch.NewFetchService(fetch.BaseFetchType).Fetch(context.Background(), u)
	require.NoError(t, err)
	return doc
}

func row(kv ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func rows(ms ...map[string]interface{}) []interface{} {
	out := make([]interface{}, 0, len(ms))
	for _, m := range ms {
		out = append(out, m)
	}
	return out
}

func inject(t *testing.T, a *Agent, n Node, doc *query.Document) interface{} {
	t.Helper()
	v, err := a.Inject(context.Background(), n, doc)
	require.NoError(t, err)
	return v
}
