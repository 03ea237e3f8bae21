package zhihu

import (
	"bytes"

	"github.com/antchfx/htmlquery"
	"go.uber.org/zap"
)

// 每个可展开的回答正文块下有一个指向回答详情页的link元素，class需完全匹配
const answerLinkXPath = `//div[@class='expandable entry-body']/link`

// 解析精华回答列表页，按文档顺序返回回答详情页的完整url，不做去重
func (p *Parser) ParseAnswerURLs(page []byte) []string {
	result := []string{}
	if len(page) == 0 {
		p.logger.Warn("invalid content", zap.String("page", "answer list"))
		return result
	}

	doc, err := htmlquery.Parse(bytes.NewReader(page))
	if err != nil {
		p.logger.Warn("parse answer list failed", zap.Error(err))
		return result
	}

	for _, n := range htmlquery.Find(doc, answerLinkXPath) {
		href := htmlquery.SelectAttr(n, "href")
		if href == "" {
			continue
		}
		result = append(result, p.origin+href)
	}
	p.logger.Debug("parse answer list", zap.Int("count", len(result)))
	return result
}
