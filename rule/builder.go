package rule

import (
	"regexp"

	"github.com/pkg/errors"
)

// RootName 是多个顶层节点被合并为映射节点时使用的名称
const RootName = "root"

var (
	ErrNoRoot  = errors.New("no root node declared")
	ErrBadCall = errors.New("bad builder call")
)

// Builder 以嵌套代码块的方式声明规则树，每个代码块内声明的节点成为外层节点的子节点
type Builder struct {
	scopes [][]Node
	err    error
}

/*
输入一个声明规则树的代码块，输出规则树根节点和一个错误

代码块中只声明了一个节点时该节点即为根节点，声明了多个节点时合并为名为root的映射节点；构建完成后会校验整棵树
*/
func Build(body func(b *Builder)) (Node, error) {
	if body == nil {
		return nil, ErrNoRoot
	}

	b := &Builder{scopes: [][]Node{nil}}
	body(b)
	if b.err != nil {
		return nil, b.err
	}

	var root Node
	switch nodes := b.scopes[0]; len(nodes) {
	case 0:
		return nil, ErrNoRoot
	case 1:
		root = nodes[0]
	default:
		root = NewMapNode(RootName, nodes...)
	}

	if err := Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}

func (b *Builder) add(n Node) {
	top := len(b.scopes) - 1
	b.scopes[top] = append(b.scopes[top], n)
}

func (b *Builder) nest(body func(*Builder)) []Node {
	if body == nil {
		return nil
	}
	b.scopes = append(b.scopes, nil)
	body(b)
	top := len(b.scopes) - 1
	children := b.scopes[top]
	b.scopes = b.scopes[:top]
	return children
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) Text(name, path string, opts ...TextOption) {
	b.add(NewTextNode(name, path, opts...))
}

func (b *Builder) Struct(name, path string, body func(*Builder)) {
	b.add(NewStructNode(name, path, b.nest(body)...))
}

func (b *Builder) Links(name, path string, body func(*Builder)) {
	b.add(NewLinksNode(name, path, b.nest(body)...))
}

func (b *Builder) Pages(name, path string, body func(*Builder), opts ...PaginateOption) {
	b.add(NewPaginateNode(name, path, b.nest(body), opts...))
}

func (b *Builder) Map(name string, body func(*Builder)) {
	b.add(NewMapNode(name, b.nest(body)...))
}

/*
输入一个形如text_title的方法名和若干参数，无输出

该方法用于按方法名前缀声明节点，前缀决定节点类型，其余部分作为名称；参数按类型解释：
string为路径，int为pages节点的页数上限，*regexp.Regexp为截取正则，TextOption与PaginateOption为对应选项，func(*Builder)为子节点代码块
*/
func (b *Builder) Call(method string, args ...interface{}) {
	if b.err != nil {
		return
	}

	kind, name, ok := SplitPrefixed(method)
	if !ok {
		b.fail(errors.Wrapf(ErrBadCall, "unknown method %q", method))
		return
	}

	var (
		path      string
		hasPath   bool
		body      func(*Builder)
		textOpts  []TextOption
		pageOpts  []PaginateOption
		textOnly  bool
		pagesOnly bool
	)
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			if hasPath {
				b.fail(errors.Wrapf(ErrBadCall, "%s: more than one path", method))
				return
			}
			path, hasPath = v, true
		case int:
			pageOpts = append(pageOpts, Limit(v))
			pagesOnly = true
		case PaginateOption:
			pageOpts = append(pageOpts, v)
			pagesOnly = true
		case *regexp.Regexp:
			textOpts = append(textOpts, Truncate(v))
			textOnly = true
		case TextOption:
			textOpts = append(textOpts, v)
			textOnly = true
		case func(*Builder):
			body = v
		default:
			b.fail(errors.Wrapf(ErrBadCall, "%s: unsupported argument %T", method, arg))
			return
		}
	}

	switch {
	case textOnly && kind != KindText:
		b.fail(errors.Wrapf(ErrBadCall, "%s: text options on %s node", method, kind))
		return
	case pagesOnly && kind != KindPages:
		b.fail(errors.Wrapf(ErrBadCall, "%s: page options on %s node", method, kind))
		return
	case kind == KindText && body != nil:
		b.fail(errors.Wrapf(ErrBadCall, "%s: text node takes no children", method))
		return
	case kind == KindMap && hasPath:
		b.fail(errors.Wrapf(ErrBadCall, "%s: map node takes no path", method))
		return
	}

	switch kind {
	case KindText:
		b.Text(name, path, textOpts...)
	case KindStruct:
		b.Struct(name, path, body)
	case KindLinks:
		b.Links(name, path, body)
	case KindPages:
		b.Pages(name, path, body, pageOpts...)
	case KindMap:
		b.Map(name, body)
	}
}
