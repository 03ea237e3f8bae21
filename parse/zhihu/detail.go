package zhihu

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// 选择器均按属性完整匹配，与页面上的class组合保持一致
const (
	labelSelector    = "div[class='zm-tag-editor-labels zg-clear']>a"
	questionSelector = "div[id='zh-question-title']>h2[class='zm-item-title']>a"
	starSelector     = "span[class='js-voteCount']"
	answerSelector   = "div[class='zm-editable-content clearfix']"
)

// 解析回答详情页。内容为空时记录日志并返回nil, nil；
// 页面结构不符合预期(问题标题不是恰好一个、缺少点赞数或回答正文)时返回ErrMalformedPage
func (p *Parser) ParseAnswerPage(page []byte) (*Answer, error) {
	if len(page) == 0 {
		p.logger.Warn("invalid content", zap.String("page", "answer detail"))
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPage, err)
	}

	labels := []string{}
	doc.Find(labelSelector).Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, strings.TrimSpace(s.Text()))
	})

	question := doc.Find(questionSelector)
	if n := question.Length(); n != 1 {
		return nil, fmt.Errorf("%w: want exactly one question title, got %d", ErrMalformedPage, n)
	}

	vote := doc.Find(starSelector)
	if vote.Length() == 0 {
		return nil, fmt.Errorf("%w: missing vote count", ErrMalformedPage)
	}
	star, err := strconv.Atoi(strings.TrimSpace(vote.First().Text()))
	if err != nil || star < 0 {
		return nil, fmt.Errorf("%w: invalid vote count %q", ErrMalformedPage, vote.First().Text())
	}

	body := doc.Find(answerSelector)
	if body.Length() == 0 {
		return nil, fmt.Errorf("%w: missing answer body", ErrMalformedPage)
	}

	return &Answer{
		Labels:   labels,
		Question: strings.TrimSpace(question.Text()),
		Answer:   strings.TrimSpace(body.First().Text()),
		Star:     star,
	}, nil
}
