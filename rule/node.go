package rule

import (
	"context"

	"github.com/dszqbsm/scrapetree/query"
	"golang.org/x/net/html"
)

// Node 是规则树中的一个节点，构造完成后不可变，可以对不同的文档重复求值
type Node interface {
	// Name 是节点结果在父节点映射中的键
	Name() string
	Kind() Kind
	// Children 返回子节点的副本，叶子节点返回nil
	Children() []Node
	/*
	   输入一个上下文、一个代理和当前作用域，输出节点的求值结果和一个错误

	   文本节点返回string，结构、链接与分页节点返回由map[string]interface{}组成的[]interface{}，映射节点返回map[string]interface{}
	*/
	Inject(ctx context.Context, a *Agent, s Scope) (interface{}, error)
}

// Scope 是求值时的查询根，Node为空时表示整个文档
type Scope struct {
	Page *query.Document
	Node *html.Node
}

func (s Scope) root() *html.Node {
	if s.Node != nil {
		return s.Node
	}
	if s.Page == nil {
		return nil
	}
	return s.Page.Root
}

func (s Scope) at(n *html.Node) Scope {
	return Scope{Page: s.Page, Node: n}
}

// 子节点对同一作用域依次求值，结果按名称合并，同名时后者覆盖前者
func injectChildren(ctx context.Context, a *Agent, children []Node, s Scope) (map[string]interface{}, error) {
	row := make(map[string]interface{}, len(children))
	for _, child := range children {
		v, err := child.Inject(ctx, a, s)
		if err != nil {
			return nil, err
		}
		row[child.Name()] = v
	}
	return row, nil
}

func copyNodes(nodes []Node) []Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}
