package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dszqbsm/scrapetree/query"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func firstText(t *testing.T, doc *query.Document, path string) string {
	t.Helper()
	nodes, err := query.XPath().Query(doc.Root, path)
	require.NoError(t, err)
	require.NotEmpty(t, nodes)
	return query.Text(nodes[0])
}

func TestBaseFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><p>fetched</p></body></html>`))
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusFound)
	})
	mux.HandleFunc("/gbk", func(w http.ResponseWriter, r *http.Request) {
		body, _ := simplifiedchinese.GBK.NewEncoder().String(`<html><body><p>阳台</p></body></html>`)
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFetchService(BaseFetchType, WithClient(srv.Client()))
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		doc, err := f.Fetch(ctx, mustURL(t, srv.URL+"/ok"))
		require.NoError(t, err)
		assert.Equal(t, "fetched", firstText(t, doc, "//p"))
	})

	t.Run("redirect keeps final url", func(t *testing.T) {
		doc, err := f.Fetch(ctx, mustURL(t, srv.URL+"/moved"))
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/ok", doc.URL.String())
	})

	t.Run("charset", func(t *testing.T) {
		doc, err := f.Fetch(ctx, mustURL(t, srv.URL+"/gbk"))
		require.NoError(t, err)
		assert.Equal(t, "阳台", firstText(t, doc, "//p"))
	})

	t.Run("status error", func(t *testing.T) {
		_, err := f.Fetch(ctx, mustURL(t, srv.URL+"/missing"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFetch))

		var fe *Error
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	})

	t.Run("transport error", func(t *testing.T) {
		_, err := f.Fetch(ctx, mustURL(t, "http://127.0.0.1:1/unreachable"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFetch))
	})
}

func TestBrowserFetchHeaders(t *testing.T) {
	var cookie, ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie = r.Header.Get("Cookie")
		ua = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`<p>ok</p>`))
	}))
	defer srv.Close()

	f := NewFetchService(BrowserFetchType,
		WithCookie("bid=abc"),
		WithWaitTime(time.Millisecond),
		WithTimeout(time.Second),
	)
	_, err := f.Fetch(context.Background(), mustURL(t, srv.URL))
	require.NoError(t, err)

	assert.Equal(t, "bid=abc", cookie)
	assert.Contains(t, userAgents, ua)
}

func TestWithCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`<p>` + r.URL.Path + `</p>`))
	}))
	defer srv.Close()

	f := WithCache(NewFetchService(BaseFetchType), 8)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		doc, err := f.Fetch(ctx, mustURL(t, srv.URL+"/a"))
		require.NoError(t, err)
		assert.Equal(t, "/a", firstText(t, doc, "//p"))
	}
	_, err := f.Fetch(ctx, mustURL(t, srv.URL+"/b"))
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name     string
		statuses []int
		wantErr  bool
		wantHits int32
	}{
		{name: "recover after 5xx", statuses: []int{500, 502, 200}, wantErr: false, wantHits: 3},
		{name: "give up", statuses: []int{500, 500, 500, 500}, wantErr: true, wantHits: 3},
		{name: "no retry on 4xx", statuses: []int{404, 200}, wantErr: true, wantHits: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&hits, 1)
				w.WriteHeader(tt.statuses[n-1])
				_, _ = w.Write([]byte(`<p>ok</p>`))
			}))
			defer srv.Close()

			f := WithRetry(NewFetchService(BaseFetchType), 2, time.Millisecond, nil)
			_, err := f.Fetch(context.Background(), mustURL(t, srv.URL))
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrFetch))
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantHits, atomic.LoadInt32(&hits))
		})
	}
}

func TestParseFetchType(t *testing.T) {
	typ, err := ParseFetchType("")
	require.NoError(t, err)
	assert.Equal(t, BaseFetchType, typ)

	typ, err = ParseFetchType("Browser")
	require.NoError(t, err)
	assert.Equal(t, BrowserFetchType, typ)

	_, err = ParseFetchType("chrome")
	assert.Error(t, err)
}
