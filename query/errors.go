package query

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidQuery 表示查询表达式为空或存在语法错误
var ErrInvalidQuery = errors.New("invalid query")

var (
	errEmptyPath  = errors.New("empty path")
	errNotNodeSet = errors.New("expression does not select nodes")
)

// QueryError 记录出错的查询引擎、表达式和底层的编译错误
type QueryError struct {
	Engine string
	Path   string
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid %s query %q: %v", e.Engine, e.Path, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func (e *QueryError) Is(target error) bool {
	return target == ErrInvalidQuery
}
