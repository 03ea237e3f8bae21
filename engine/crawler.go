package engine

// 顺序爬取：话题 -> 列表页 -> 回答。已入库的回答不再请求，每个回答单独提交，中断后重跑即可从第一个未入库的回答继续

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dszqbsm/sakura/limiter"
	"github.com/dszqbsm/sakura/parse/zhihu"
	"go.uber.org/zap"
)

// 去重与持久化，由sqlstorage.SqlStore实现
type Storage interface {
	AnswerExists(ctx context.Context, questionID, answerID int64) (bool, error)
	AddAnswer(ctx context.Context, questionID, answerID int64, a *zhihu.Answer) error
}

// 由zhihu.Parser实现
type Parser interface {
	ParseAnswerURLs(page []byte) []string
	ParseAnswerPage(page []byte) (*zhihu.Answer, error)
}

// 由limiter.Pacer实现
type Pacer interface {
	Wait(ctx context.Context, step limiter.Step) error
}

// 一次爬取的统计
type Stats struct {
	Topics      int `json:"topics"`
	Pages       int `json:"pages"`
	URLs        int `json:"urls"`
	Skipped     int `json:"skipped"`     // 已入库而跳过
	Saved       int `json:"saved"`       // 新写入
	FetchFailed int `json:"fetchFailed"` // 请求失败，页面按空处理
	Malformed   int `json:"malformed"`   // url或页面结构异常
}

// 爬虫实例，管理整个爬取流程
type Crawler struct {
	stats Stats
	options
}

// 创建并初始化一个Crawler爬虫实例
func NewCrawler(opts ...Option) *Crawler {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.Parser == nil {
		options.Parser = zhihu.NewParser(zhihu.WithLogger(options.Logger))
	}
	if options.Pacer == nil {
		options.Pacer = limiter.NewPacer(limiter.DefaultPolicy, nil)
	}
	return &Crawler{options: options}
}

// 依次爬取每个话题。请求失败只记录日志；存储错误、ctx结束或开启AbortOnMalformed时的结构异常会终止爬取
func (c *Crawler) Run(ctx context.Context) (Stats, error) {
	c.stats = Stats{}
	if c.Fetcher == nil {
		return c.stats, errors.New("engine: fetcher is required")
	}
	if c.Store == nil {
		return c.stats, errors.New("engine: store is required")
	}

	for _, topic := range c.Topics {
		if err := c.crawlTopic(ctx, topic); err != nil {
			c.Logger.Error("crawl aborted", zap.String("topic", topic), zap.Error(err), c.statsField())
			return c.stats, err
		}
		c.stats.Topics++
		if err := c.Pacer.Wait(ctx, limiter.StepTopic); err != nil {
			return c.stats, err
		}
	}

	c.Logger.Info("crawl finished", c.statsField())
	return c.stats, nil
}

func (c *Crawler) crawlTopic(ctx context.Context, topic string) error {
	c.Logger.Info("crawl topic", zap.String("topic", topic))
	for n := 1; n <= c.MaxPage; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		url := ListURL(topic, n)
		c.Logger.Info("crawl page", zap.String("url", url))

		page, ok := c.fetch(ctx, url)
		urls := c.Parser.ParseAnswerURLs(page)
		c.stats.Pages++
		if ok && len(urls) == 0 && c.StopOnEmpty {
			c.Logger.Info("no answers on page, topic done", zap.String("url", url))
			return nil
		}

		for _, u := range urls {
			if err := c.crawlAnswer(ctx, u); err != nil {
				return err
			}
		}

		if err := c.Pacer.Wait(ctx, limiter.StepPage); err != nil {
			return err
		}
	}
	return nil
}

func (c *Crawler) crawlAnswer(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.stats.URLs++
	c.Logger.Info("crawl answer", zap.String("url", url))

	qid, aid, err := zhihu.ParseAnswerID(url)
	if err != nil {
		return c.malformed(url, err)
	}

	exists, err := c.Store.AnswerExists(ctx, qid, aid)
	if err != nil {
		return err
	}
	if exists {
		// 跳过的回答不请求，也不休眠
		c.stats.Skipped++
		c.Logger.Debug("answer exists", zap.Int64("question_id", qid), zap.Int64("answer_id", aid))
		return nil
	}

	page, _ := c.fetch(ctx, url)
	answer, err := c.Parser.ParseAnswerPage(page)
	if err != nil {
		if err := c.malformed(url, err); err != nil {
			return err
		}
	} else if answer != nil {
		if err := c.Store.AddAnswer(ctx, qid, aid, answer); err != nil {
			return fmt.Errorf("save answer %s: %w", url, err)
		}
		c.stats.Saved++
	}

	return c.Pacer.Wait(ctx, limiter.StepAnswer)
}

// 请求失败时记录日志并按空页面处理
func (c *Crawler) fetch(ctx context.Context, url string) ([]byte, bool) {
	body, err := c.Fetcher.Get(ctx, url)
	if err != nil {
		c.stats.FetchFailed++
		c.Logger.Warn("fetch failed", zap.String("url", url), zap.Error(err))
		return nil, false
	}
	return body, true
}

func (c *Crawler) malformed(url string, err error) error {
	c.stats.Malformed++
	if c.AbortOnMalformed {
		return fmt.Errorf("%s: %w", url, err)
	}
	c.Logger.Warn("malformed, skip", zap.String("url", url), zap.Error(err))
	return nil
}

func (c *Crawler) statsField() zap.Field {
	return zap.Any("stats", c.stats)
}

// 话题下第n页的列表url
func ListURL(topic string, n int) string {
	return topic + "?page=" + strconv.Itoa(n)
}
