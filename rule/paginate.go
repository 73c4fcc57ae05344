package rule

import (
	"context"

	"github.com/dszqbsm/scrapetree/query"
	"go.uber.org/zap"
)

// PaginateNode 对当前页求值后沿"下一页"链接翻页，直到没有下一页或达到页数上限
type PaginateNode struct {
	name     string
	path     string
	children []Node
	limit    int
	flatten  bool
}

type PaginateOption func(n *PaginateNode)

// Limit 设置最多处理的页数，0表示不限制
func Limit(limit int) PaginateOption {
	return func(n *PaginateNode) {
		n.limit = limit
	}
}

// Flatten 将每页中序列类型的子结果展开拼接，而不是每页一个映射
func Flatten(flatten bool) PaginateOption {
	return func(n *PaginateNode) {
		n.flatten = flatten
	}
}

func NewPaginateNode(name, path string, children []Node, opts ...PaginateOption) *PaginateNode {
	n := &PaginateNode{name: name, path: path, children: copyNodes(children)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *PaginateNode) Name() string     { return n.name }
func (n *PaginateNode) Kind() Kind       { return KindPages }
func (n *PaginateNode) Path() string     { return n.path }
func (n *PaginateNode) Children() []Node { return copyNodes(n.children) }
func (n *PaginateNode) Limit() int       { return n.limit }
func (n *PaginateNode) Flatten() bool    { return n.flatten }

/*
输入一个上下文、一个代理和当前作用域，输出每页的求值结果和一个错误

翻页严格串行：求值当前页，查找下一页链接，没有链接、已达到页数上限或链接指向本轮已访问过的页面时结束，否则获取下一页继续
*/
func (n *PaginateNode) Inject(ctx context.Context, a *Agent, s Scope) (interface{}, error) {
	results := make([]interface{}, 0)
	visited := make(map[string]bool)
	if s.Page != nil && s.Page.URL != nil {
		visited[s.Page.URL.String()] = true
	}

	page := s
	for pages := 1; ; pages++ {
		row, err := injectChildren(ctx, a, n.children, page)
		if err != nil {
			return nil, err
		}
		results = n.appendPage(results, row)

		next, err := a.query(page, n.path)
		if err != nil {
			return nil, err
		}
		if len(next) == 0 {
			break
		}
		if n.limit > 0 && pages >= n.limit {
			break
		}

		target, ok := query.LinkTarget(page.Page, next[0])
		if !ok {
			break
		}
		if visited[target.String()] {
			a.logger.Warn("pagination revisits page, stop", zap.String("url", target.String()))
			break
		}
		visited[target.String()] = true

		doc, err := a.fetch(ctx, target)
		if err != nil {
			return nil, err
		}

		page = Scope{Page: doc}
	}

	return results, nil
}

func (n *PaginateNode) appendPage(results []interface{}, row map[string]interface{}) []interface{} {
	if !n.flatten {
		return append(results, row)
	}

	// 按子节点声明顺序展开，保证结果顺序确定
	for _, child := range n.children {
		v := row[child.Name()]
		if seq, ok := v.([]interface{}); ok {
			results = append(results, seq...)
			continue
		}
		results = append(results, v)
	}
	return results
}
