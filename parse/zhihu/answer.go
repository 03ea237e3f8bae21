package zhihu

// 知乎话题精华回答的解析规则：列表页提取回答链接，详情页提取问题、标签、回答正文与点赞数

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"go.uber.org/zap"
)

const DefaultOrigin = "https://www.zhihu.com"

var (
	ErrMalformedPage = errors.New("malformed answer page")
	ErrBadAnswerURL  = errors.New("malformed answer url")
)

// 一个回答详情，只在解析与入库之间短暂存在，入库时拆成answer与label两张表的记录
type Answer struct {
	Labels   []string `json:"labels"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Star     int      `json:"star"`
}

var idRe = regexp.MustCompile(`\d+`)

// 回答链接形如 /question/{问题id}/answer/{回答id}，按出现顺序取路径中的两个数字；主机名与端口中的数字不计入
func ParseAnswerID(rawURL string) (questionID, answerID int64, err error) {
	target := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		target = u.Path
	}
	ids := idRe.FindAllString(target, -1)
	if len(ids) != 2 {
		return 0, 0, fmt.Errorf("%w: %q has %d numeric ids", ErrBadAnswerURL, rawURL, len(ids))
	}
	if questionID, err = strconv.ParseInt(ids[0], 10, 64); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrBadAnswerURL, err)
	}
	if answerID, err = strconv.ParseInt(ids[1], 10, 64); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrBadAnswerURL, err)
	}
	return questionID, answerID, nil
}

type Parser struct {
	options
}

func NewParser(opts ...Option) *Parser {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Parser{options: options}
}

type options struct {
	logger *zap.Logger
	origin string
}

var defaultOptions = options{
	logger: zap.NewNop(),
	origin: DefaultOrigin,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// 列表页中的回答链接是站内相对路径，拼接时使用的站点前缀
func WithOrigin(origin string) Option {
	return func(opts *options) {
		opts.origin = origin
	}
}
