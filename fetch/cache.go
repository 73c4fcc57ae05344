package fetch

import (
	"context"
	"net/url"
	"sync"

	"github.com/dszqbsm/scrapetree/query"
	"github.com/golang/groupcache/lru"
)

type cacheFetch struct {
	next  Fetcher
	mu    sync.Mutex
	pages *lru.Cache
}

/*
输入一个采集器和缓存容量，输出一个带页面缓存的采集器

该方法用于在采集器外包装一层按url缓存的LRU，同一地址只会真正请求一次，容量小于等于0时直接返回原采集器；
缓存的文档只读，多个调用方共享同一棵节点树
*/
func WithCache(next Fetcher, size int) Fetcher {
	if size <= 0 {
		return next
	}
	return &cacheFetch{next: next, pages: lru.New(size)}
}

func (c *cacheFetch) Fetch(ctx context.Context, u *url.URL) (*query.Document, error) {
	key := u.String()

	c.mu.Lock()
	v, ok := c.pages.Get(key)
	c.mu.Unlock()
	if ok {
		return v.(*query.Document), nil
	}

	doc, err := c.next.Fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.pages.Add(key, doc)
	c.mu.Unlock()

	return doc, nil
}
