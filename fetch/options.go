package fetch

import (
	"net/http"
	"time"

	"github.com/dszqbsm/scrapetree/limiter"
	"github.com/dszqbsm/scrapetree/proxy"
	"go.uber.org/zap"
)

type options struct {
	Timeout  time.Duration // http超时时间
	Cookie   string
	WaitTime time.Duration // 请求前随机休眠的上限
	Proxy    proxy.ProxyFunc
	Limit    limiter.RateLimiter
	client   *http.Client
	logger   *zap.Logger
}

var defaultOptions = options{
	Timeout: 10 * time.Second,
	logger:  zap.NewNop(),
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.Timeout = timeout
	}
}

func WithCookie(cookie string) Option {
	return func(opts *options) {
		opts.Cookie = cookie
	}
}

func WithWaitTime(waitTime time.Duration) Option {
	return func(opts *options) {
		opts.WaitTime = waitTime
	}
}

func WithProxy(p proxy.ProxyFunc) Option {
	return func(opts *options) {
		opts.Proxy = p
	}
}

func WithLimiter(l limiter.RateLimiter) Option {
	return func(opts *options) {
		opts.Limit = l
	}
}

// WithClient 使用指定的http客户端，此时Timeout与Proxy不再生效
func WithClient(c *http.Client) Option {
	return func(opts *options) {
		opts.client = c
	}
}
