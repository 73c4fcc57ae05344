package rule

import (
	"regexp"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(NewMapNode("root",
		NewTextNode("title", "/html/head/title"),
		NewPaginateNode("pages", nextPath, []Node{NewTextNode("title", "/html/body/p")}, Limit(2)),
	)))

	tests := []struct {
		name string
		node Node
		errs []error
	}{
		{name: "nil", node: nil, errs: []error{ErrNilNode}},
		{name: "empty name", node: NewTextNode("", "/p"), errs: []error{ErrEmptyName}},
		{name: "blank path", node: NewStructNode("rows", "  "), errs: []error{ErrEmptyPath}},
		{name: "negative limit", node: NewPaginateNode("pages", nextPath, nil, Limit(-1)), errs: []error{ErrNegativeLimit}},
		{name: "unknown proc", node: NewTextNode("title", "/p", Proc("hoge")), errs: []error{ErrUnknownProc}},
		{
			name: "nil child",
			node: NewMapNode("root", NewTextNode("title", "/p"), nil),
			errs: []error{ErrNilNode},
		},
		{
			name: "several problems",
			node: NewLinksNode("root", "//a",
				NewTextNode("title", ""),
				NewTextNode("title", "/p"),
				NewStructNode("", "//tr"),
			),
			errs: []error{ErrEmptyPath, ErrDuplicateName, ErrEmptyName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.node)
			assert.Len(t, multierr.Errors(err), len(tt.errs))
			for _, want := range tt.errs {
				assert.True(t, errors.Is(err, want), "want %v in %v", want, err)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	base := func(opts ...TextOption) Node {
		return NewStructNode("rows", "//tr", NewTextNode("title", "./td[1]", opts...))
	}

	tests := []struct {
		name string
		a, b Node
		want bool
	}{
		{name: "both nil", want: true},
		{name: "one nil", a: base(), want: false},
		{name: "same", a: base(), b: base(), want: true},
		{name: "same truncate", a: base(Truncate(regexp.MustCompile(`a+`))), b: base(Truncate(regexp.MustCompile(`a+`))), want: true},
		{name: "truncate differs", a: base(Truncate(regexp.MustCompile(`a+`))), b: base(), want: false},
		{name: "proc differs", a: base(Proc("upcase")), b: base(Proc("downcase")), want: false},
		{name: "kind differs", a: NewStructNode("rows", "//tr"), b: NewLinksNode("rows", "//tr"), want: false},
		{name: "path differs", a: NewStructNode("rows", "//tr"), b: NewStructNode("rows", "//td"), want: false},
		{name: "limit differs", a: NewPaginateNode("p", "//a", nil, Limit(1)), b: NewPaginateNode("p", "//a", nil), want: false},
		{name: "flatten differs", a: NewPaginateNode("p", "//a", nil, Flatten(true)), b: NewPaginateNode("p", "//a", nil), want: false},
		{
			name: "child order",
			a:    NewMapNode("m", NewTextNode("a", "/a"), NewTextNode("b", "/b")),
			b:    NewMapNode("m", NewTextNode("b", "/b"), NewTextNode("a", "/a")),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestSplitPrefixed(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		name string
		ok   bool
	}{
		{in: "text_title", kind: KindText, name: "title", ok: true},
		{in: "struct_table", kind: KindStruct, name: "table", ok: true},
		{in: "links_sub_link", kind: KindLinks, name: "sub_link", ok: true},
		{in: "pages_root", kind: KindPages, name: "root", ok: true},
		{in: "map_info", kind: KindMap, name: "info", ok: true},
		{in: "title", ok: false},
		{in: "texts_title", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			kind, name, ok := SplitPrefixed(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestChildrenAreCopies(t *testing.T) {
	n := NewMapNode("m", NewTextNode("a", "/a"))
	children := n.Children()
	children[0] = NewTextNode("b", "/b")
	assert.Equal(t, "a", n.Children()[0].Name())
}
