package config

import (
	"strings"
	"time"

	"github.com/dszqbsm/scrapetree/fetch"
	"github.com/dszqbsm/scrapetree/limiter"
	"github.com/dszqbsm/scrapetree/proxy"
	"github.com/dszqbsm/scrapetree/query"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 环境变量前缀，fetcher.timeout对应SCRAPETREE_FETCHER_TIMEOUT
const EnvPrefix = "SCRAPETREE"

type Config struct {
	LogLevel string        `mapstructure:"logLevel"`
	LogFile  string        `mapstructure:"logFile"`
	Selector string        `mapstructure:"selector"`
	Fetcher  FetcherConfig `mapstructure:"fetcher"`
	Limits   []LimitConfig `mapstructure:"limits"`
}

// FetcherConfig 中的时间均以毫秒为单位
type FetcherConfig struct {
	Type          string   `mapstructure:"type"`
	Timeout       int      `mapstructure:"timeout"`
	Proxy         []string `mapstructure:"proxy"`
	Cookie        string   `mapstructure:"cookie"`
	WaitTime      int      `mapstructure:"waitTime"`
	Retry         int      `mapstructure:"retry"`
	RetryInterval int      `mapstructure:"retryInterval"`
	CacheSize     int      `mapstructure:"cacheSize"`
}

// LimitConfig 描述一个令牌桶，EventDur以秒为单位
type LimitConfig struct {
	EventCount int `mapstructure:"eventCount"`
	EventDur   int `mapstructure:"eventDur"`
	Bucket     int `mapstructure:"bucket"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "INFO")
	v.SetDefault("logFile", "")
	v.SetDefault("selector", query.XPathEngine)
	v.SetDefault("fetcher.type", "base")
	v.SetDefault("fetcher.timeout", 5000)
	v.SetDefault("fetcher.proxy", []string{})
	v.SetDefault("fetcher.cookie", "")
	v.SetDefault("fetcher.waitTime", 0)
	v.SetDefault("fetcher.retry", 0)
	v.SetDefault("fetcher.retryInterval", 1000)
	v.SetDefault("fetcher.cacheSize", 0)
}

/*
输入一个配置文件路径，输出配置和一个错误

该方法用于通过viper加载toml、yaml或json格式的配置文件，文件格式由扩展名决定，路径为空时只使用默认值；
SCRAPETREE_前缀的环境变量会覆盖文件中的同名配置
*/
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %q", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}

// Level 解析日志级别，大小写不敏感
func (c *Config) Level() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return level, errors.Wrapf(err, "parse log level %q", c.LogLevel)
	}
	return level, nil
}

func (c *Config) Engine() (query.Engine, error) {
	return query.EngineByName(c.Selector)
}

/*
输入一个日志器，输出一个采集器和一个错误

该方法用于按配置组装采集器：先创建基础或浏览器采集器并设置超时、代理、cookie、随机休眠与限速，再依次包装重试与页面缓存
*/
func (c *Config) NewFetcher(logger *zap.Logger) (fetch.Fetcher, error) {
	typ, err := fetch.ParseFetchType(c.Fetcher.Type)
	if err != nil {
		return nil, err
	}

	opts := []fetch.Option{
		fetch.WithLogger(logger),
		fetch.WithTimeout(time.Duration(c.Fetcher.Timeout) * time.Millisecond),
		fetch.WithCookie(c.Fetcher.Cookie),
		fetch.WithWaitTime(time.Duration(c.Fetcher.WaitTime) * time.Millisecond),
	}
	if len(c.Fetcher.Proxy) > 0 {
		p, err := proxy.RoundRobinProxySwitcher(c.Fetcher.Proxy...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fetch.WithProxy(p))
	}
	if l := limiter.New(c.limitSpecs()...); l != nil {
		opts = append(opts, fetch.WithLimiter(l))
	}

	f := fetch.NewFetchService(typ, opts...)
	f = fetch.WithRetry(f, c.Fetcher.Retry, time.Duration(c.Fetcher.RetryInterval)*time.Millisecond, logger)
	return fetch.WithCache(f, c.Fetcher.CacheSize), nil
}

func (c *Config) limitSpecs() []limiter.Spec {
	specs := make([]limiter.Spec, 0, len(c.Limits))
	for _, l := range c.Limits {
		specs = append(specs, limiter.Spec{
			EventCount: l.EventCount,
			EventDur:   time.Duration(l.EventDur) * time.Second,
			Bucket:     l.Bucket,
		})
	}
	return specs
}
