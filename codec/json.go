package codec

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// jsonToNode 按token读取json并转换为保持键顺序的yaml节点树，输入为空时返回nil
func jsonToNode(data []byte) (*yaml.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	r := &jsonReader{dec: json.NewDecoder(bytes.NewReader(data)), data: data}
	r.dec.UseNumber()

	n, err := r.value()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		var me *MalformedError
		if errors.As(err, &me) {
			return nil, err
		}
		return nil, &MalformedError{Path: "$", Line: r.line(), Err: err}
	}

	if _, err := r.dec.Token(); err != io.EOF {
		return nil, &MalformedError{Path: "$", Line: r.line(), Err: errors.New("unexpected data after top-level value")}
	}
	return n, nil
}

type jsonReader struct {
	dec  *json.Decoder
	data []byte
}

// line 返回下一个token所在的行号
func (r *jsonReader) line() int {
	off := int(r.dec.InputOffset())
	for off < len(r.data) && isSpace(r.data[off]) {
		off++
	}
	if off > len(r.data) {
		off = len(r.data)
	}
	return bytes.Count(r.data[:off], []byte{'\n'}) + 1
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func (r *jsonReader) value() (*yaml.Node, error) {
	line := r.line()
	tok, err := r.dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return r.object(line)
		case '[':
			return r.array(line)
		}
		return nil, &MalformedError{Path: "$", Line: line, Err: errors.Errorf("unexpected %q", v)}
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Line: line}, nil
	case json.Number:
		tag := "!!float"
		if _, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.String(), Line: line}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v), Line: line}, nil
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null", Line: line}, nil
	}
	return nil, errors.Errorf("unexpected json token %v", tok)
}

func (r *jsonReader) object(line int) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Line: line}
	for r.dec.More() {
		keyLine := r.line()
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		value, err := r.value()
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key, Line: keyLine}, value)
	}
	// 结束符}
	if _, err := r.dec.Token(); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *jsonReader) array(line int) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Line: line}
	for r.dec.More() {
		value, err := r.value()
		if err != nil {
			return nil, err
		}
		n.Content = append(n.Content, value)
	}
	if _, err := r.dec.Token(); err != nil {
		return nil, err
	}
	return n, nil
}

// writeJSON 按节点顺序输出紧凑json，标量按标签决定是否加引号
func writeJSON(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, n.Content[i].Value); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, c := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!int", "!!float", "!!bool", "!!null":
			buf.WriteString(n.Value)
		default:
			return writeJSONString(buf, n.Value)
		}
	default:
		return errors.Errorf("cannot write yaml node kind %d as json", n.Kind)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return errors.Wrap(err, "marshal json string")
	}
	buf.Write(bytes.TrimSuffix(b.Bytes(), []byte{'\n'}))
	return nil
}
