package engine

import (
	"github.com/dszqbsm/sakura/collect"
	"github.com/dszqbsm/sakura/limiter"
	"go.uber.org/zap"
)

type Option func(opts *options)

// 爬虫配置选项
type options struct {
	Logger           *zap.Logger     // 日志
	Fetcher          collect.Fetcher // 采集器
	Parser           Parser          // 列表页与详情页解析
	Store            Storage         // 去重与持久化
	Pacer            Pacer           // 各节奏点的休眠
	Topics           []string        // 话题精华页，不带page参数
	MaxPage          int             // 每个话题最多翻到第几页
	StopOnEmpty      bool            // 列表页没有链接时结束该话题
	AbortOnMalformed bool            // 页面或url结构异常时终止
}

const DefaultMaxPage = 50

var defaultOptions = options{
	Logger:  zap.NewNop(),
	MaxPage: DefaultMaxPage,
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

func WithFetcher(fetcher collect.Fetcher) Option {
	return func(opts *options) {
		opts.Fetcher = fetcher
	}
}

func WithParser(parser Parser) Option {
	return func(opts *options) {
		opts.Parser = parser
	}
}

func WithStore(store Storage) Option {
	return func(opts *options) {
		opts.Store = store
	}
}

func WithPacer(pacer Pacer) Option {
	return func(opts *options) {
		opts.Pacer = pacer
	}
}

// 便于直接按时间间隔配置节奏
func WithPolicy(policy limiter.Policy) Option {
	return func(opts *options) {
		opts.Pacer = limiter.NewPacer(policy, nil)
	}
}

func WithTopics(topics ...string) Option {
	return func(opts *options) {
		opts.Topics = topics
	}
}

func WithMaxPage(maxPage int) Option {
	return func(opts *options) {
		opts.MaxPage = maxPage
	}
}

func WithStopOnEmpty(stop bool) Option {
	return func(opts *options) {
		opts.StopOnEmpty = stop
	}
}

func WithAbortOnMalformed(abort bool) Option {
	return func(opts *options) {
		opts.AbortOnMalformed = abort
	}
}
