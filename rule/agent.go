package rule

import (
	"context"
	"net/url"

	"github.com/dszqbsm/scrapetree/fetch"
	"github.com/dszqbsm/scrapetree/query"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

type options struct {
	fetcher fetch.Fetcher
	engine  query.Engine
	logger  *zap.Logger
}

var defaultOptions = options{
	logger: zap.NewNop(),
}

type Option func(opts *options)

func WithFetcher(f fetch.Fetcher) Option {
	return func(opts *options) {
		opts.fetcher = f
	}
}

func WithEngine(e query.Engine) Option {
	return func(opts *options) {
		opts.engine = e
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// Agent 为规则树求值提供页面获取与查询能力，本身不保存求值状态，可以并发复用
type Agent struct {
	options
}

/*
输入多个配置选项，输出一个Agent实例

该方法用于创建求值代理，未指定采集器时使用BaseFetchType采集器，未指定查询引擎时使用xpath
*/
func NewAgent(opts ...Option) *Agent {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.fetcher == nil {
		options.fetcher = fetch.NewFetchService(fetch.BaseFetchType, fetch.WithLogger(options.logger))
	}
	if options.engine == nil {
		options.engine = query.XPath()
	}

	return &Agent{options: options}
}

/*
输入一个上下文、规则树根节点和起始地址，输出求值结果和一个错误

该方法用于获取起始页面，并以整个页面为作用域对规则树求值
*/
func (a *Agent) Scrape(ctx context.Context, root Node, rawURL string) (interface{}, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse start url %q", rawURL)
	}

	doc, err := a.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	return a.Inject(ctx, root, doc)
}

// Inject 以整个文档为作用域对规则树求值，根节点为空时返回nil
func (a *Agent) Inject(ctx context.Context, root Node, doc *query.Document) (interface{}, error) {
	if root == nil {
		return nil, nil
	}
	return root.Inject(ctx, a, Scope{Page: doc})
}

func (a *Agent) query(s Scope, path string) ([]*html.Node, error) {
	root := s.root()
	if root == nil {
		return nil, nil
	}

	nodes, err := a.engine.Query(root, path)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("query",
		zap.String("engine", a.engine.Name()),
		zap.String("path", path),
		zap.Stringer("page", s.Page),
		zap.Int("matches", len(nodes)),
	)

	return nodes, nil
}

func (a *Agent) fetch(ctx context.Context, u *url.URL) (*query.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.logger.Debug("fetch", zap.String("url", u.String()))
	return a.fetcher.Fetch(ctx, u)
}

/*
输入一个上下文、当前作用域和一个链接节点，输出目标文档和一个错误

该方法用于解析链接节点的目标地址并获取目标页面；节点不是可解析的链接时返回空文档，不视为错误
*/
func (a *Agent) follow(ctx context.Context, s Scope, n *html.Node) (*query.Document, error) {
	target, ok := query.LinkTarget(s.Page, n)
	if !ok {
		a.logger.Debug("skip node without link target", zap.Stringer("page", s.Page))
		return nil, nil
	}

	return a.fetch(ctx, target)
}
