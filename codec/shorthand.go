package codec

import (
	"github.com/dszqbsm/scrapetree/rule"
	"gopkg.in/yaml.v3"
)

// 简写格式中不作为子节点解释的保留键
var shorthandFields = map[rule.Kind]map[string]bool{
	rule.KindText:   {fieldPath: true, fieldTruncate: true, fieldProc: true},
	rule.KindStruct: {fieldPath: true},
	rule.KindLinks:  {fieldPath: true},
	rule.KindPages:  {fieldPath: true, fieldLimit: true, fieldFlatten: true},
	rule.KindMap:    {},
}

// 顶层只有一个键时该键即为根节点，多个键时合并为名为root的映射节点
func decodeShorthandRoot(n *yaml.Node) (rule.Node, error) {
	if len(n.Content) == 2 {
		return decodeShorthand(n.Content[0], resolve(n.Content[1]), "$")
	}

	children, err := decodeShorthandChildren(n, nil, "$")
	if err != nil {
		return nil, err
	}
	return rule.NewMapNode(rule.RootName, children...), nil
}

/*
输入一个简写键、它的值和父节点位置，输出规则树节点和一个错误

该方法用于解码简写格式：键的前缀决定节点类型，没有前缀但值为映射的键解释为映射节点；
text节点的值可以是路径字符串，也可以是包含path、truncate、proc的映射，其余节点的值为映射，保留键之外的键递归解码为子节点
*/
func decodeShorthand(key, value *yaml.Node, parent string) (rule.Node, error) {
	at := parent + "." + key.Value
	if key.Kind != yaml.ScalarNode {
		return nil, malformed(parent, key.Line, "shorthand key must be a string")
	}

	kind, name, ok := rule.SplitPrefixed(key.Value)
	if !ok {
		if value == nil || value.Kind != yaml.MappingNode {
			return nil, malformed(at, key.Line, "unknown shorthand prefix in %q", key.Value)
		}
		kind, name = rule.KindMap, key.Value
	}

	if kind == rule.KindText && value != nil && value.Kind == yaml.ScalarNode && !isNull(value) {
		return rule.NewTextNode(name, value.Value), nil
	}
	if value == nil || value.Kind != yaml.MappingNode {
		return nil, malformed(at, key.Line, "%s node %q must be a mapping", kind, name)
	}

	spec := nodeSpec{kind: kind, name: name}
	reserved := shorthandFields[kind]
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], resolve(value.Content[i+1])
		if !reserved[k.Value] {
			continue
		}

		var err error
		switch k.Value {
		case fieldPath:
			spec.path, err = scalarString(v, at, k.Value)
		case fieldProc:
			spec.proc, err = scalarString(v, at, k.Value)
		case fieldTruncate:
			spec.truncate, err = scalarRegexp(v, at, k.Value)
		case fieldLimit:
			spec.limit, err = scalarInt(v, at, k.Value)
		case fieldFlatten:
			spec.flatten, err = scalarBool(v, at, k.Value)
		}
		if err != nil {
			return nil, err
		}
	}

	if kind == rule.KindText {
		for i := 0; i+1 < len(value.Content); i += 2 {
			if k := value.Content[i]; !reserved[k.Value] {
				return nil, malformed(at, k.Line, "unknown field %q for text node", k.Value)
			}
		}
		return spec.build(), nil
	}

	children, err := decodeShorthandChildren(value, reserved, at)
	if err != nil {
		return nil, err
	}
	spec.children = children
	return spec.build(), nil
}

func decodeShorthandChildren(n *yaml.Node, reserved map[string]bool, at string) ([]rule.Node, error) {
	var children []rule.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if reserved[k.Value] {
			continue
		}
		child, err := decodeShorthand(k, resolve(n.Content[i+1]), at)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}
