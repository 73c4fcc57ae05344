package rule

import "context"

// StructNode 对每个匹配节点求值全部子节点，每个匹配产生一行结果
type StructNode struct {
	name     string
	path     string
	children []Node
}

func NewStructNode(name, path string, children ...Node) *StructNode {
	return &StructNode{name: name, path: path, children: copyNodes(children)}
}

func (n *StructNode) Name() string     { return n.name }
func (n *StructNode) Kind() Kind       { return KindStruct }
func (n *StructNode) Path() string     { return n.path }
func (n *StructNode) Children() []Node { return copyNodes(n.children) }

func (n *StructNode) Inject(ctx context.Context, a *Agent, s Scope) (interface{}, error) {
	matches, err := a.query(s, n.path)
	if err != nil {
		return nil, err
	}

	rows := make([]interface{}, 0, len(matches))
	for _, m := range matches {
		row, err := injectChildren(ctx, a, n.children, s.at(m))
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}
