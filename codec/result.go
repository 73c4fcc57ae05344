package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dszqbsm/scrapetree/rule"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EncodeResultJSON 将求值结果编码为json，映射的键按规则树中子节点的声明顺序输出
func EncodeResultJSON(root rule.Node, result interface{}) ([]byte, error) {
	var compact bytes.Buffer
	if err := writeJSON(&compact, resultNode(root, result)); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, errors.Wrap(err, "indent json")
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// EncodeResultYAML 将求值结果编码为yaml，映射的键按规则树中子节点的声明顺序输出
func EncodeResultYAML(root rule.Node, result interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(resultNode(root, result)); err != nil {
		return nil, errors.Wrap(err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encode yaml")
	}
	return buf.Bytes(), nil
}

func resultNode(n rule.Node, v interface{}) *yaml.Node {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case string:
		return strNode(x)
	case []interface{}:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range x {
			seq.Content = append(seq.Content, resultNode(n, e))
		}
		return seq
	case map[string]interface{}:
		owner := rowOwner(n, x)
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range orderedKeys(owner, x) {
			m.Content = append(m.Content, strNode(key), resultNode(childNamed(owner, key), x[key]))
		}
		return m
	default:
		return strNode(fmt.Sprint(x))
	}
}

// rowOwner 找到产生该行的节点；展开的分页结果中，行来自某个子节点而不是分页节点本身
func rowOwner(n rule.Node, row map[string]interface{}) rule.Node {
	if n == nil || covers(n, row) {
		return n
	}
	for _, c := range n.Children() {
		if c != nil && covers(c, row) {
			return c
		}
	}
	return n
}

func covers(n rule.Node, row map[string]interface{}) bool {
	children := n.Children()
	if len(children) == 0 {
		return len(row) == 0
	}
	for _, c := range children {
		if c == nil {
			return false
		}
		if _, ok := row[c.Name()]; !ok {
			return false
		}
	}
	return true
}

func orderedKeys(n rule.Node, row map[string]interface{}) []string {
	keys := make([]string, 0, len(row))
	seen := make(map[string]bool, len(row))
	if n != nil {
		for _, c := range n.Children() {
			if c == nil || seen[c.Name()] {
				continue
			}
			if _, ok := row[c.Name()]; ok {
				keys = append(keys, c.Name())
				seen[c.Name()] = true
			}
		}
	}

	var rest []string
	for k := range row {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func childNamed(n rule.Node, name string) rule.Node {
	if n == nil {
		return nil
	}
	var found rule.Node
	for _, c := range n.Children() {
		if c != nil && c.Name() == name {
			found = c
		}
	}
	return found
}
