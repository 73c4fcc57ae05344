package rule

import "context"

// MapNode 在同一作用域下求值全部子节点并合并为一个映射，不做任何查询或跳转
type MapNode struct {
	name     string
	children []Node
}

func NewMapNode(name string, children ...Node) *MapNode {
	return &MapNode{name: name, children: copyNodes(children)}
}

func (n *MapNode) Name() string     { return n.name }
func (n *MapNode) Kind() Kind       { return KindMap }
func (n *MapNode) Children() []Node { return copyNodes(n.children) }

func (n *MapNode) Inject(ctx context.Context, a *Agent, s Scope) (interface{}, error) {
	return injectChildren(ctx, a, n.children, s)
}
