package query

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// 查询引擎统一了不同查询语言的行为
type Engine interface {
	// Name 返回引擎名称，用于日志与配置
	Name() string
	/*
	   输入一个上下文节点和一个查询表达式，输出按文档顺序排列的匹配节点和一个错误

	   没有匹配时返回空结果而不是错误，只有表达式为空或语法错误时才返回ErrInvalidQuery
	*/
	Query(n *html.Node, path string) ([]*html.Node, error)
}

const (
	XPathEngine = "xpath"
	CSSEngine   = "css"
)

// EngineByName 根据配置中的名称创建查询引擎，名称为空时默认使用xpath
func EngineByName(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", XPathEngine:
		return XPath(), nil
	case CSSEngine:
		return CSS(), nil
	default:
		return nil, errors.Errorf("unknown query engine %q", name)
	}
}
