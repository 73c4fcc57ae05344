package codec

import (
	"bytes"
	"encoding/json"

	"github.com/dszqbsm/scrapetree/rule"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EmptyPolicy 决定空规则文档的解码结果
type EmptyPolicy int

const (
	// EmptyAsNil 空文档、null与{}解码为空规则树，不返回错误
	EmptyAsNil EmptyPolicy = iota
	// EmptyAsError 空文档返回ErrEmptyTree
	EmptyAsError
)

type options struct {
	empty EmptyPolicy
}

var defaultOptions = options{
	empty: EmptyAsNil,
}

type Option func(opts *options)

func WithEmptyPolicy(p EmptyPolicy) Option {
	return func(opts *options) {
		opts.empty = p
	}
}

/*
输入规则文档内容和若干选项，输出规则树根节点和一个错误

该方法用于自动识别文档语法：第一个非空白字符为{或[且能按json解析时按json解码，否则按yaml解码；
顶层映射包含node字段时按显式格式解码，否则按简写格式解码，解码结果会经过rule.Validate校验
*/
func Decode(data []byte, opts ...Option) (rule.Node, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		// yaml的流式映射同样以{开头，不是合法json时交给yaml解析
		if doc, err := jsonToNode(data); err == nil {
			return decodeDocument(doc, opts)
		}
	}
	return DecodeYAML(data, opts...)
}

// DecodeJSON 按json语法解码规则文档
func DecodeJSON(data []byte, opts ...Option) (rule.Node, error) {
	doc, err := jsonToNode(data)
	if err != nil {
		return nil, err
	}
	return decodeDocument(doc, opts)
}

// DecodeYAML 按yaml语法解码规则文档，锚点与别名会被展开
func DecodeYAML(data []byte, opts ...Option) (rule.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedError{Path: "$", Err: err}
	}
	return decodeDocument(&doc, opts)
}

func decodeDocument(doc *yaml.Node, opts []Option) (rule.Node, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	n := resolve(doc)
	if isEmpty(n) {
		if o.empty == EmptyAsError {
			return nil, ErrEmptyTree
		}
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, malformed("$", n.Line, "rule document must be a mapping, got %s", kindName(n))
	}

	var (
		root rule.Node
		err  error
	)
	if lookup(n, fieldNode) != nil {
		root, err = decodeExplicit(n, "$")
	} else {
		root, err = decodeShorthandRoot(n)
	}
	if err != nil {
		return nil, err
	}

	if err := rule.Validate(root); err != nil {
		return nil, &MalformedError{Path: "$", Err: err}
	}
	return root, nil
}

// EncodeJSON 将规则树编码为显式格式的json，默认值字段被省略，空规则树编码为空内容
func EncodeJSON(root rule.Node) ([]byte, error) {
	if root == nil {
		return nil, nil
	}
	n, err := encodeExplicit(root, "$")
	if err != nil {
		return nil, err
	}

	var compact bytes.Buffer
	if err := writeJSON(&compact, n); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, errors.Wrap(err, "indent json")
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// EncodeYAML 将规则树编码为显式格式的yaml，默认值字段被省略，空规则树编码为空内容
func EncodeYAML(root rule.Node) ([]byte, error) {
	if root == nil {
		return nil, nil
	}
	n, err := encodeExplicit(root, "$")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return nil, errors.Wrap(err, "encode yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encode yaml")
	}
	return buf.Bytes(), nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func isEmpty(n *yaml.Node) bool {
	switch {
	case n == nil || n.Kind == 0:
		return true
	case n.Kind == yaml.ScalarNode:
		return n.ShortTag() == "!!null"
	case n.Kind == yaml.MappingNode:
		return len(n.Content) == 0
	}
	return false
}

// lookup 返回映射节点中指定键的值
func lookup(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return resolve(n.Content[i+1])
		}
	}
	return nil
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return "null"
		}
		return "scalar"
	}
	return "unknown"
}
