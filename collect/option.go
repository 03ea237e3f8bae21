package collect

import (
	"time"

	"github.com/dszqbsm/sakura/limiter"
	"github.com/dszqbsm/sakura/proxy"
	"go.uber.org/zap"
)

type options struct {
	logger  *zap.Logger
	timeout time.Duration
	headers map[string]string
	proxy   proxy.ProxyFunc
	limit   limiter.RateLimiter
}

// 模拟浏览器的固定请求头；Accept-Encoding交给transport处理以便自动解压gzip，Host由url决定
var DefaultHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "zh-CN,zh;q=0.8,en;q=0.6,zh-TW;q=0.4",
	"Cache-Control":             "max-age=0",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"User-Agent":                "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/56.0.2924.87 Safari/537.36",
}

const DefaultTimeout = 10 * time.Second

var defaultOptions = options{
	logger:  zap.NewNop(),
	timeout: DefaultTimeout,
	headers: DefaultHeaders,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.timeout = timeout
	}
}

// 覆盖或追加请求头，不修改DefaultHeaders本身
func WithHeaders(headers map[string]string) Option {
	return func(opts *options) {
		merged := make(map[string]string, len(opts.headers)+len(headers))
		for k, v := range opts.headers {
			merged[k] = v
		}
		for k, v := range headers {
			merged[k] = v
		}
		opts.headers = merged
	}
}

func WithProxy(p proxy.ProxyFunc) Option {
	return func(opts *options) {
		opts.proxy = p
	}
}

func WithLimit(l limiter.RateLimiter) Option {
	return func(opts *options) {
		opts.limit = l
	}
}
