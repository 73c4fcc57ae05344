package rule

import "context"

// LinksNode 跟随每个匹配的链接，对目标页面求值全部子节点
type LinksNode struct {
	name     string
	path     string
	children []Node
}

func NewLinksNode(name, path string, children ...Node) *LinksNode {
	return &LinksNode{name: name, path: path, children: copyNodes(children)}
}

func (n *LinksNode) Name() string     { return n.name }
func (n *LinksNode) Kind() Kind       { return KindLinks }
func (n *LinksNode) Path() string     { return n.path }
func (n *LinksNode) Children() []Node { return copyNodes(n.children) }

/*
输入一个上下文、一个代理和当前作用域，输出每个链接目标页面的求值结果和一个错误

无法解析出目标地址的匹配节点被跳过，不产生空行；任一页面获取失败时整个求值失败
*/
func (n *LinksNode) Inject(ctx context.Context, a *Agent, s Scope) (interface{}, error) {
	matches, err := a.query(s, n.path)
	if err != nil {
		return nil, err
	}

	rows := make([]interface{}, 0, len(matches))
	for _, m := range matches {
		page, err := a.follow(ctx, s, m)
		if err != nil {
			return nil, err
		}
		if page == nil {
			continue
		}

		row, err := injectChildren(ctx, a, n.children, Scope{Page: page})
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}
