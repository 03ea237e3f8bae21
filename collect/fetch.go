package collect

// 采集器：用一个长期存活的resty客户端(复用连接)发起GET请求，统一请求头与超时，并把响应体转换为utf-8

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

type Fetcher interface {
	// 返回页面内容；网络错误与非2xx状态都以error返回，由调用方决定如何降级
	Get(ctx context.Context, url string) ([]byte, error)
}

// 非2xx响应
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("get %s: unexpected status code %d", e.URL, e.StatusCode)
}

type BrowserFetch struct {
	client *resty.Client
	options
}

func NewBrowserFetch(opts ...Option) *BrowserFetch {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	client := resty.New().
		SetTimeout(options.timeout).
		SetHeaders(options.headers)
	if options.proxy != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = options.proxy
		client.SetTransport(transport)
	}

	return &BrowserFetch{client: client, options: options}
}

func (b *BrowserFetch) Get(ctx context.Context, url string) ([]byte, error) {
	if b.limit != nil {
		if err := b.limit.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := b.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		// 读完响应体以便连接回到连接池
		_, _ = io.Copy(io.Discard, body)
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode()}
	}

	bodyReader := bufio.NewReader(body)
	e := DetermineEncoding(bodyReader, resp.Header().Get("Content-Type"))
	content, err := io.ReadAll(transform.NewReader(bodyReader, e.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	b.logger.Debug("fetch done",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode()),
		zap.Int("bytes", len(content)),
	)
	return content, nil
}

// 根据响应头与前1024字节判断页面编码；不足1024字节时Peek会返回已读到的部分
func DetermineEncoding(r *bufio.Reader, contentType string) encoding.Encoding {
	head, _ := r.Peek(1024)
	e, _, _ := charset.DetermineEncoding(head, contentType)
	return e
}
