package fetch

import (
	"bufio"
	"context"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dszqbsm/scrapetree/query"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type FetchType int

const (
	BaseFetchType FetchType = iota
	BrowserFetchType
)

// ParseFetchType 将配置中的采集器名称转换为采集器类型
func ParseFetchType(name string) (FetchType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "base":
		return BaseFetchType, nil
	case "browser":
		return BrowserFetchType, nil
	default:
		return BaseFetchType, errors.Errorf("unknown fetcher type %q", name)
	}
}

type Fetcher interface {
	/*
	   输入一个上下文和一个页面地址，输出一个已解析的文档和一个错误

	   该方法用于获取页面并转换为utf-8编码后解析，文档地址为跟随重定向后的最终地址，传输失败或状态码不为200时返回ErrFetch
	*/
	Fetch(ctx context.Context, u *url.URL) (*query.Document, error)
}

/*
输入一个采集器类型和多个配置选项，输出一个Fetcher接口类型的实例

该方法用于根据采集器类型创建对应的采集器，BaseFetchType只发送普通的GET请求，BrowserFetchType会限速、随机休眠并模拟浏览器请求头
*/
func NewFetchService(typ FetchType, opts ...Option) Fetcher {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.client == nil {
		options.client = newClient(options)
	}

	switch typ {
	case BaseFetchType:
		return &baseFetch{options: options}
	default:
		return &browserFetch{options: options}
	}
}

func newClient(o options) *http.Client {
	client := &http.Client{Timeout: o.Timeout}
	if o.Proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = o.Proxy
		client.Transport = transport
	}
	return client
}

type baseFetch struct {
	options
}

func (b *baseFetch) Fetch(ctx context.Context, u *url.URL) (*query.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{URL: u.String(), Err: err}
	}

	return b.do(req)
}

type browserFetch struct {
	options
}

/*
输入一个上下文和一个页面地址，输出一个已解析的文档和一个错误

该方法用于发送模拟人类行为的get请求，基于令牌桶算法进行限流，进行随机休眠，设置随机User-Agent和Cookie，代理与超时在创建客户端时已配置
*/
func (b *browserFetch) Fetch(ctx context.Context, u *url.URL) (*query.Document, error) {
	if b.Limit != nil {
		if err := b.Limit.Wait(ctx); err != nil {
			return nil, &Error{URL: u.String(), Err: errors.Wrap(err, "rate limit wait")}
		}
	}

	// 随机休眠，模拟人类行为
	if b.WaitTime > 0 {
		sleep := time.Duration(rand.Int63n(int64(b.WaitTime)))
		select {
		case <-ctx.Done():
			return nil, &Error{URL: u.String(), Err: ctx.Err()}
		case <-time.After(sleep):
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{URL: u.String(), Err: err}
	}

	if len(b.Cookie) > 0 {
		req.Header.Set("Cookie", b.Cookie)
	}
	req.Header.Set("User-Agent", GenerateRandomUA())

	return b.do(req)
}

func (o *options) do(req *http.Request) (*query.Document, error) {
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &Error{URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: req.URL.String(), StatusCode: resp.StatusCode}
	}

	bodyReader := bufio.NewReader(resp.Body)
	e := DeterminEncoding(bodyReader, resp.Header.Get("Content-Type"))
	utf8Reader := transform.NewReader(bodyReader, e.NewDecoder())

	doc, err := query.Parse(utf8Reader, resp.Request.URL)
	if err != nil {
		return nil, &Error{URL: req.URL.String(), Err: err}
	}

	o.logger.Debug("fetch page",
		zap.String("url", req.URL.String()),
		zap.String("final", resp.Request.URL.String()),
		zap.Int("status", resp.StatusCode),
	)

	return doc, nil
}

// DeterminEncoding 依据响应头与正文前1024字节推断页面编码，无法读取时按utf-8处理
func DeterminEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	bytes, err := r.Peek(1024)
	if err != nil && len(bytes) == 0 {
		return unicode.UTF8
	}

	e, _, _ := charset.DetermineEncoding(bytes, contentType)

	return e
}
