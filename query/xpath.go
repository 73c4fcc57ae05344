package query

import (
	"fmt"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/golang/groupcache/lru"
	"golang.org/x/net/html"
)

// 编译后的表达式缓存数量
const exprCacheSize = 256

type xpathEngine struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// XPath 返回基于antchfx/xpath的查询引擎，编译后的表达式会被缓存复用
func XPath() Engine {
	return &xpathEngine{cache: lru.New(exprCacheSize)}
}

func (e *xpathEngine) Name() string {
	return XPathEngine
}

func (e *xpathEngine) compile(path string) (*xpath.Expr, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.cache.Get(path); ok {
		return v.(*xpath.Expr), nil
	}

	expr, err := xpath.Compile(path)
	if err != nil {
		return nil, err
	}
	if err := selectsNodes(expr); err != nil {
		return nil, err
	}
	e.cache.Add(path, expr)

	return expr, nil
}

// selectsNodes 在空文档上试算一次表达式，count()、string()等结果不是节点集合的表达式不能用于选取元素
func selectsNodes(expr *xpath.Expr) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	if _, ok := expr.Evaluate(newNavigator(&html.Node{Type: html.DocumentNode})).(*xpath.NodeIterator); !ok {
		return errNotNodeSet
	}
	return nil
}

func (e *xpathEngine) Query(n *html.Node, path string) (nodes []*html.Node, err error) {
	if strings.TrimSpace(path) == "" {
		return nil, &QueryError{Engine: e.Name(), Path: path, Err: errEmptyPath}
	}

	expr, err := e.compile(path)
	if err != nil {
		return nil, &QueryError{Engine: e.Name(), Path: path, Err: err}
	}

	// xpath包在求值出错时会panic
	defer func() {
		if r := recover(); r != nil {
			nodes = nil
			err = &QueryError{Engine: e.Name(), Path: path, Err: fmt.Errorf("%v", r)}
		}
	}()

	seen := make(map[*html.Node]bool)
	iter := expr.Select(newNavigator(n))
	for iter.MoveNext() {
		node := currentNode(iter.Current().(*navigator))
		if !seen[node] {
			seen[node] = true
			nodes = append(nodes, node)
		}
	}

	return nodes, nil
}

// navigator 让绝对路径从文档根开始，而不是从上下文节点开始
type navigator struct {
	*htmlquery.NodeNavigator
}

func newNavigator(n *html.Node) *navigator {
	return &navigator{NodeNavigator: htmlquery.CreateXPathNavigator(n)}
}

func (nav *navigator) MoveToRoot() {
	for nav.NodeNavigator.MoveToParent() {
	}
}

func (nav *navigator) Copy() xpath.NodeNavigator {
	return &navigator{NodeNavigator: nav.NodeNavigator.Copy().(*htmlquery.NodeNavigator)}
}

func (nav *navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*navigator)
	if !ok {
		return false
	}
	return nav.NodeNavigator.MoveTo(o.NodeNavigator)
}

// 属性节点被包装成以属性名为标签、属性值为文本的元素节点
func currentNode(nav *navigator) *html.Node {
	if nav.NodeType() == xpath.AttributeNode {
		child := &html.Node{Type: html.TextNode, Data: nav.Value()}
		return &html.Node{
			Type:       html.ElementNode,
			Data:       nav.LocalName(),
			FirstChild: child,
			LastChild:  child,
		}
	}
	return nav.Current()
}
