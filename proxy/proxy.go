package proxy

import (
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ProxyFunc 与http.Transport.Proxy的签名一致
type ProxyFunc func(*http.Request) (*url.URL, error)

type roundRobinSwitcher struct {
	proxyURLs []*url.URL
	index     uint32
}

// 按轮询顺序为每个请求选择一个代理地址
func (r *roundRobinSwitcher) GetProxy(_ *http.Request) (*url.URL, error) {
	index := atomic.AddUint32(&r.index, 1) - 1
	return r.proxyURLs[index%uint32(len(r.proxyURLs))], nil
}

/*
输入一个代理服务器地址列表，输出一个代理服务器切换函数和一个error

该方法用于创建一个轮询调度的代理服务器切换函数，地址列表为空、地址无法解析或缺少协议与主机时返回错误
*/
func RoundRobinProxySwitcher(proxyURLs ...string) (ProxyFunc, error) {
	if len(proxyURLs) < 1 {
		return nil, errors.New("proxy url list is empty")
	}

	urls := make([]*url.URL, len(proxyURLs))
	for i, u := range proxyURLs {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, errors.Wrapf(err, "parse proxy url %q", u)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return nil, errors.Errorf("proxy url %q must have scheme and host", u)
		}
		urls[i] = parsed
	}

	return (&roundRobinSwitcher{proxyURLs: urls}).GetProxy, nil
}
