package codec

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMalformedTree = errors.New("malformed rule tree")
	ErrEmptyTree     = errors.New("empty rule tree")
)

// MalformedError 描述规则文档中无法解码的位置，Path形如$.children[0]，Line为0时表示行号未知
type MalformedError struct {
	Path string
	Line int
	Err  error
}

func (e *MalformedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at %s (line %d): %v", ErrMalformedTree, e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s at %s: %v", ErrMalformedTree, e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformedTree
}

func malformed(at string, line int, format string, args ...interface{}) error {
	return &MalformedError{Path: at, Line: line, Err: errors.Errorf(format, args...)}
}
