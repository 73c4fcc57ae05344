package codec

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/dszqbsm/scrapetree/rule"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// 显式格式字段，编码时按此顺序输出
const (
	fieldNode     = "node"
	fieldName     = "name"
	fieldPath     = "path"
	fieldTruncate = "truncate"
	fieldProc     = "proc"
	fieldLimit    = "limit"
	fieldFlatten  = "flatten"
	fieldChildren = "children"
)

// 各类节点允许出现的字段
var explicitFields = map[rule.Kind]map[string]bool{
	rule.KindText:   {fieldNode: true, fieldName: true, fieldPath: true, fieldTruncate: true, fieldProc: true},
	rule.KindStruct: {fieldNode: true, fieldName: true, fieldPath: true, fieldChildren: true},
	rule.KindLinks:  {fieldNode: true, fieldName: true, fieldPath: true, fieldChildren: true},
	rule.KindPages:  {fieldNode: true, fieldName: true, fieldPath: true, fieldLimit: true, fieldFlatten: true, fieldChildren: true},
	rule.KindMap:    {fieldNode: true, fieldName: true, fieldChildren: true},
}

// nodeSpec 是解码过程中收集到的节点字段
type nodeSpec struct {
	kind     rule.Kind
	name     string
	path     string
	truncate *regexp.Regexp
	proc     string
	limit    int
	flatten  bool
	children []rule.Node
}

func (s *nodeSpec) build() rule.Node {
	switch s.kind {
	case rule.KindText:
		var opts []rule.TextOption
		if s.truncate != nil {
			opts = append(opts, rule.Truncate(s.truncate))
		}
		if s.proc != "" {
			opts = append(opts, rule.Proc(s.proc))
		}
		return rule.NewTextNode(s.name, s.path, opts...)
	case rule.KindStruct:
		return rule.NewStructNode(s.name, s.path, s.children...)
	case rule.KindLinks:
		return rule.NewLinksNode(s.name, s.path, s.children...)
	case rule.KindPages:
		return rule.NewPaginateNode(s.name, s.path, s.children, rule.Limit(s.limit), rule.Flatten(s.flatten))
	default:
		return rule.NewMapNode(s.name, s.children...)
	}
}

/*
输入一个yaml映射节点和它在文档中的位置，输出规则树节点和一个错误

该方法用于解码显式格式：node字段决定节点类型，缺省的可选字段取默认值，未知字段、与节点类型不符的字段以及重复字段都会报错
*/
func decodeExplicit(n *yaml.Node, at string) (rule.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, malformed(at, n.Line, "expected mapping, got %s", kindName(n))
	}

	kindNode := lookup(n, fieldNode)
	if kindNode == nil {
		return nil, malformed(at, n.Line, "missing %q field", fieldNode)
	}
	if kindNode.Kind != yaml.ScalarNode {
		return nil, malformed(at, kindNode.Line, "%q must be a string", fieldNode)
	}
	kind, ok := rule.ParseKind(kindNode.Value)
	if !ok {
		return nil, malformed(at, kindNode.Line, "unknown node kind %q", kindNode.Value)
	}

	spec := nodeSpec{kind: kind}
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolve(n.Content[i+1])
		if seen[key.Value] {
			return nil, malformed(at, key.Line, "duplicate field %q", key.Value)
		}
		seen[key.Value] = true

		if !explicitFields[kind][key.Value] {
			return nil, malformed(at, key.Line, "unknown field %q for %s node", key.Value, kind)
		}

		var err error
		switch key.Value {
		case fieldName:
			spec.name, err = scalarString(value, at, key.Value)
		case fieldPath:
			spec.path, err = scalarString(value, at, key.Value)
		case fieldProc:
			spec.proc, err = scalarString(value, at, key.Value)
		case fieldTruncate:
			spec.truncate, err = scalarRegexp(value, at, key.Value)
		case fieldLimit:
			spec.limit, err = scalarInt(value, at, key.Value)
		case fieldFlatten:
			spec.flatten, err = scalarBool(value, at, key.Value)
		case fieldChildren:
			spec.children, err = decodeExplicitChildren(value, at)
		}
		if err != nil {
			return nil, err
		}
	}

	return spec.build(), nil
}

func decodeExplicitChildren(n *yaml.Node, at string) ([]rule.Node, error) {
	if n == nil || isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, malformed(at, n.Line, "%q must be a sequence", fieldChildren)
	}

	children := make([]rule.Node, 0, len(n.Content))
	for i, c := range n.Content {
		child, err := decodeExplicit(resolve(c), fmt.Sprintf("%s.%s[%d]", at, fieldChildren, i))
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

/*
输入一个规则树节点和它的位置，输出显式格式的yaml映射节点和一个错误

该方法用于编码规则树，字段按node、name、path、truncate、proc、limit、flatten、children的顺序输出，默认值字段被省略
*/
func encodeExplicit(n rule.Node, at string) (*yaml.Node, error) {
	if n == nil {
		return nil, errors.Wrap(rule.ErrNilNode, at)
	}

	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	add := func(key string, value *yaml.Node) {
		m.Content = append(m.Content, strNode(key), value)
	}

	add(fieldNode, strNode(string(n.Kind())))
	add(fieldName, strNode(n.Name()))
	if p, ok := n.(interface{ Path() string }); ok && n.Kind() != rule.KindMap {
		add(fieldPath, strNode(p.Path()))
	}
	if t, ok := n.(interface{ TruncatePattern() string }); ok && t.TruncatePattern() != "" {
		add(fieldTruncate, strNode(t.TruncatePattern()))
	}
	if p, ok := n.(interface{ ProcName() string }); ok && p.ProcName() != "" {
		add(fieldProc, strNode(p.ProcName()))
	}
	if l, ok := n.(interface{ Limit() int }); ok && l.Limit() != 0 {
		add(fieldLimit, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(l.Limit())})
	}
	if f, ok := n.(interface{ Flatten() bool }); ok && f.Flatten() {
		add(fieldFlatten, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
	}

	if children := n.Children(); len(children) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, c := range children {
			child, err := encodeExplicit(c, fmt.Sprintf("%s.%s[%d]", at, fieldChildren, i))
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		add(fieldChildren, seq)
	}

	return m, nil
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func scalarString(n *yaml.Node, at, field string) (string, error) {
	if n == nil || n.Kind != yaml.ScalarNode || isNull(n) {
		return "", malformed(at, lineOf(n), "%q must be a string", field)
	}
	return n.Value, nil
}

func scalarRegexp(n *yaml.Node, at, field string) (*regexp.Regexp, error) {
	s, err := scalarString(n, at, field)
	if err != nil || s == "" {
		return nil, err
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return nil, malformed(at, n.Line, "%q is not a valid pattern: %v", field, err)
	}
	return re, nil
}

func scalarInt(n *yaml.Node, at, field string) (int, error) {
	var v int
	if n == nil || n.Kind != yaml.ScalarNode || n.ShortTag() != "!!int" || n.Decode(&v) != nil {
		return 0, malformed(at, lineOf(n), "%q must be an integer", field)
	}
	return v, nil
}

func scalarBool(n *yaml.Node, at, field string) (bool, error) {
	var v bool
	if n == nil || n.Kind != yaml.ScalarNode || n.ShortTag() != "!!bool" || n.Decode(&v) != nil {
		return false, malformed(at, lineOf(n), "%q must be a boolean", field)
	}
	return v, nil
}

func lineOf(n *yaml.Node) int {
	if n == nil {
		return 0
	}
	return n.Line
}
