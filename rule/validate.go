package rule

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

var (
	ErrNilNode       = errors.New("nil node")
	ErrEmptyName     = errors.New("empty node name")
	ErrEmptyPath     = errors.New("empty node path")
	ErrDuplicateName = errors.New("duplicate node name")
	ErrNegativeLimit = errors.New("negative page limit")
)

type pather interface {
	Path() string
}

/*
输入一个规则树根节点，输出一个错误

该方法用于检查整棵规则树：名称不能为空且在兄弟节点间唯一，除映射节点外路径不能为空，页数上限不能为负，后处理名称必须可用；
所有问题会被合并为一个错误返回，可以用errors.Is判断其中的具体类型
*/
func Validate(root Node) error {
	return validate(root, "$")
}

func validate(n Node, at string) error {
	if n == nil {
		return errors.Wrap(ErrNilNode, at)
	}

	var err error
	if n.Name() == "" {
		err = multierr.Append(err, errors.Wrap(ErrEmptyName, at))
	}
	if p, ok := n.(pather); ok && strings.TrimSpace(p.Path()) == "" {
		err = multierr.Append(err, errors.Wrap(ErrEmptyPath, at))
	}

	switch v := n.(type) {
	case *TextNode:
		if v.proc != "" && !KnownProc(v.proc) {
			err = multierr.Append(err, errors.Wrapf(ErrUnknownProc, "%s: %q", at, v.proc))
		}
	case *PaginateNode:
		if v.limit < 0 {
			err = multierr.Append(err, errors.Wrapf(ErrNegativeLimit, "%s: %d", at, v.limit))
		}
	}

	seen := make(map[string]bool)
	for i, child := range n.Children() {
		childAt := fmt.Sprintf("%s[%d]", at, i)
		if child != nil && child.Name() != "" {
			childAt = at + "." + child.Name()
			if seen[child.Name()] {
				err = multierr.Append(err, errors.Wrap(ErrDuplicateName, childAt))
			}
			seen[child.Name()] = true
		}
		err = multierr.Append(err, validate(child, childAt))
	}

	return err
}
