package query

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/golang/groupcache/lru"
	"golang.org/x/net/html"
)

type cssEngine struct {
	mu    sync.Mutex
	cache *lru.Cache
}

// CSS 返回基于cascadia选择器的查询引擎，只在上下文节点的后代中查找
func CSS() Engine {
	return &cssEngine{cache: lru.New(exprCacheSize)}
}

func (e *cssEngine) Name() string {
	return CSSEngine
}

func (e *cssEngine) compile(path string) (cascadia.Selector, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.cache.Get(path); ok {
		return v.(cascadia.Selector), nil
	}

	sel, err := cascadia.Compile(path)
	if err != nil {
		return nil, err
	}
	e.cache.Add(path, sel)

	return sel, nil
}

func (e *cssEngine) Query(n *html.Node, path string) ([]*html.Node, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &QueryError{Engine: e.Name(), Path: path, Err: errEmptyPath}
	}

	sel, err := e.compile(path)
	if err != nil {
		return nil, &QueryError{Engine: e.Name(), Path: path, Err: err}
	}

	return goquery.NewDocumentFromNode(n).FindMatcher(sel).Nodes, nil
}
