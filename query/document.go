package query

import (
	"io"
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// Document 表示一个已解析的页面，URL用于解析页面中的相对链接
type Document struct {
	URL  *url.URL
	Root *html.Node
}

/*
输入一个页面内容的读取器和页面地址，输出一个文档和一个错误

该方法用于将html内容解析为节点树，并与页面地址一起封装为文档，页面地址可以为空，此时只能解析绝对链接
*/
func Parse(r io.Reader, u *url.URL) (*Document, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse html failed")
	}

	return &Document{URL: u, Root: root}, nil
}

func ParseString(s string, u *url.URL) (*Document, error) {
	return Parse(strings.NewReader(s), u)
}

func (d *Document) String() string {
	if d == nil || d.URL == nil {
		return "<nil>"
	}
	return d.URL.String()
}

// Text 返回节点下所有文本节点拼接后的内容
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return htmlquery.InnerText(n)
}

/*
输入一个文档和文档中的一个节点，输出一个链接地址和一个布尔值

该方法用于解析节点的href属性，并基于文档地址将相对链接转换为绝对链接，同时去掉锚点部分；
节点没有href属性、属性为空、属性无法解析或指向javascript、mailto等非页面地址时，返回false
*/
func LinkTarget(doc *Document, n *html.Node) (*url.URL, bool) {
	if n == nil {
		return nil, false
	}

	href := strings.TrimSpace(htmlquery.SelectAttr(n, "href"))
	if href == "" {
		return nil, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}

	switch strings.ToLower(ref.Scheme) {
	case "javascript", "mailto", "tel", "data":
		return nil, false
	}

	if doc != nil && doc.URL != nil {
		ref = doc.URL.ResolveReference(ref)
	}
	if !ref.IsAbs() {
		return nil, false
	}
	ref.Fragment = ""

	return ref, true
}
