package rule

import (
	"context"
	"regexp"

	"github.com/dszqbsm/scrapetree/query"
)

// TextNode 取第一个匹配节点的文本，可选地截取与后处理
type TextNode struct {
	name     string
	path     string
	truncate *regexp.Regexp
	proc     string
}

type TextOption func(n *TextNode)

// Truncate 设置截取正则，匹配时返回第一个捕获组，没有捕获组时返回整个匹配，不匹配时返回空字符串
func Truncate(re *regexp.Regexp) TextOption {
	return func(n *TextNode) {
		n.truncate = re
	}
}

// Proc 设置后处理函数名称，见RegisterProc
func Proc(name string) TextOption {
	return func(n *TextNode) {
		n.proc = name
	}
}

func NewTextNode(name, path string, opts ...TextOption) *TextNode {
	n := &TextNode{name: name, path: path}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *TextNode) Name() string     { return n.name }
func (n *TextNode) Kind() Kind       { return KindText }
func (n *TextNode) Children() []Node { return nil }
func (n *TextNode) Path() string     { return n.path }
func (n *TextNode) ProcName() string { return n.proc }

// TruncatePattern 返回截取正则的原始表达式，未设置时为空
func (n *TextNode) TruncatePattern() string {
	if n.truncate == nil {
		return ""
	}
	return n.truncate.String()
}

func (n *TextNode) Inject(ctx context.Context, a *Agent, s Scope) (interface{}, error) {
	matches, err := a.query(s, n.path)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return "", nil
	}

	text := query.Text(matches[0])
	if n.truncate != nil {
		text = truncate(n.truncate, text)
	}
	if n.proc != "" {
		fn, err := lookupProc(n.proc)
		if err != nil {
			return nil, err
		}
		if text, err = fn(ctx, text); err != nil {
			return nil, err
		}
	}

	return text, nil
}

func truncate(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	switch {
	case m == nil:
		return ""
	case len(m) > 1:
		return m[1]
	default:
		return m[0]
	}
}
