package rule

import (
	"regexp"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name string
		body func(b *Builder)
		want Node
	}{
		{
			name: "single text",
			body: func(b *Builder) {
				b.Text("title", "/html/body/p[1]", Truncate(regexp.MustCompile(`^[^,]+`)), Proc("upcase"))
			},
			want: NewTextNode("title", "/html/body/p[1]", Truncate(regexp.MustCompile(`^[^,]+`)), Proc("upcase")),
		},
		{
			name: "nested",
			body: func(b *Builder) {
				b.Links("root", "/html/body/a", func(b *Builder) {
					b.Text("content", "/html/body/p")
					b.Links("sub_link", "/html/body/ul/li/a", func(b *Builder) {
						b.Text("sub_page_title", "/html/head/title")
					})
				})
			},
			want: NewLinksNode("root", "/html/body/a",
				NewTextNode("content", "/html/body/p"),
				NewLinksNode("sub_link", "/html/body/ul/li/a", NewTextNode("sub_page_title", "/html/head/title")),
			),
		},
		{
			name: "pages",
			body: func(b *Builder) {
				b.Pages("root", nextPath, func(b *Builder) {
					b.Text("content", "/html/body/p")
				}, Limit(3), Flatten(true))
			},
			want: NewPaginateNode("root", nextPath, []Node{NewTextNode("content", "/html/body/p")}, Limit(3), Flatten(true)),
		},
		{
			name: "several roots become map",
			body: func(b *Builder) {
				b.Text("title", "/html/head/title")
				b.Struct("table", "/html/body/table[1]/tbody/tr", func(b *Builder) {
					b.Text("title", "./td[1]")
				})
			},
			want: NewMapNode(RootName,
				NewTextNode("title", "/html/head/title"),
				NewStructNode("table", "/html/body/table[1]/tbody/tr", NewTextNode("title", "./td[1]")),
			),
		},
		{
			name: "map",
			body: func(b *Builder) {
				b.Map("info", func(b *Builder) {
					b.Text("title", "/html/head/title")
				})
			},
			want: NewMapNode("info", NewTextNode("title", "/html/head/title")),
		},
		{
			name: "call",
			body: func(b *Builder) {
				b.Call("pages_root", nextPath, 2, func(b *Builder) {
					b.Call("text_content", "/html/body/p", regexp.MustCompile(`\d+`), Proc("strip"))
					b.Call("map_meta", func(b *Builder) {
						b.Call("text_title", "/html/head/title")
					})
				})
			},
			want: NewPaginateNode("root", nextPath, []Node{
				NewTextNode("content", "/html/body/p", Truncate(regexp.MustCompile(`\d+`)), Proc("strip")),
				NewMapNode("meta", NewTextNode("title", "/html/head/title")),
			}, Limit(2)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.body)
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got))
		})
	}
}

func TestBuildScrape(t *testing.T) {
	srv := newTestServer(t)
	a, _ := newTestAgent(t)

	root, err := Build(func(b *Builder) {
		b.Text("title", "/html/body/p[1]", Proc("upcase"))
	})
	require.NoError(t, err)
	assert.Equal(t, "HELLO,YASURI", inject(t, a, root, getPage(t, srv, "/")))
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		body func(b *Builder)
		err  error
	}{
		{name: "no root", body: func(b *Builder) {}, err: ErrNoRoot},
		{name: "nil body", body: nil, err: ErrNoRoot},
		{name: "unknown method", body: func(b *Builder) { b.Call("hoge_title", "/p") }, err: ErrBadCall},
		{name: "two paths", body: func(b *Builder) { b.Call("text_title", "/p", "/q") }, err: ErrBadCall},
		{name: "text with children", body: func(b *Builder) { b.Call("text_title", "/p", func(b *Builder) {}) }, err: ErrBadCall},
		{name: "limit on struct", body: func(b *Builder) { b.Call("struct_rows", "//tr", 3) }, err: ErrBadCall},
		{name: "truncate on links", body: func(b *Builder) { b.Call("links_a", "//a", regexp.MustCompile(`x`)) }, err: ErrBadCall},
		{name: "map with path", body: func(b *Builder) { b.Call("map_info", "/p") }, err: ErrBadCall},
		{name: "bad argument", body: func(b *Builder) { b.Call("text_title", "/p", 1.5) }, err: ErrBadCall},
		{name: "empty path", body: func(b *Builder) { b.Text("title", "") }, err: ErrEmptyPath},
		{name: "unknown proc", body: func(b *Builder) { b.Text("title", "/p", Proc("hoge")) }, err: ErrUnknownProc},
		{
			name: "duplicate names",
			body: func(b *Builder) {
				b.Text("title", "/p")
				b.Text("title", "/q")
			},
			err: ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := Build(tt.body)
			assert.Nil(t, root)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}
}
