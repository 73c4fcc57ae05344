package fetch

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrFetch 表示页面获取失败，包括传输错误与非200状态码
var ErrFetch = errors.New("fetch failed")

type Error struct {
	URL        string
	StatusCode int // 传输失败时为0
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: error status code:%d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrFetch
}
