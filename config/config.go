package config

// 爬虫的全部可调参数；默认值即原有的固定常量，可选的yaml文件覆盖其中任意一项

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dszqbsm/sakura/collect"
	"github.com/dszqbsm/sakura/limiter"
	"github.com/dszqbsm/sakura/parse/zhihu"
	"github.com/dszqbsm/sakura/sqldb"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxPage = 50
	DefaultDBFile  = "tables.sqlite"
)

// 恋爱、婚姻两个话题的精华回答
var DefaultTopics = []string{
	"https://www.zhihu.com/topic/19564408/top-answers",
	"https://www.zhihu.com/topic/19553155/top-answers",
}

// 显式指定的配置文件不存在
var ErrConfigNotFound = errors.New("configuration file not found")

type Config struct {
	LogLevel         string         `yaml:"logLevel"`
	LogFile          string         `yaml:"logFile"`
	Origin           string         `yaml:"origin"`
	Topics           []string       `yaml:"topics"`
	MaxPage          int            `yaml:"maxPage"`
	StopOnEmpty      bool           `yaml:"stopOnEmpty"`      // 列表页没有回答链接时提前结束该话题
	AbortOnMalformed bool           `yaml:"abortOnMalformed"` // 页面结构异常时终止整个爬取
	Fetcher          FetcherConfig  `yaml:"fetcher"`
	Pacing           limiter.Policy `yaml:"pacing"`
	Storage          StorageConfig  `yaml:"storage"`
}

type FetcherConfig struct {
	Timeout   time.Duration         `yaml:"timeout"`
	UserAgent string                `yaml:"userAgent"`
	Proxy     []string              `yaml:"proxy"`
	Limits    []limiter.LimitConfig `yaml:"limits"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Reset  bool   `yaml:"reset"` // 启动时清空并重建表
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Origin:   zhihu.DefaultOrigin,
		Topics:   append([]string(nil), DefaultTopics...),
		MaxPage:  DefaultMaxPage,
		Fetcher: FetcherConfig{
			Timeout:   collect.DefaultTimeout,
			UserAgent: collect.DefaultHeaders["User-Agent"],
		},
		Pacing: limiter.DefaultPolicy,
		Storage: StorageConfig{
			Driver: sqldb.DriverSQLite,
			DSN:    DefaultDSN(),
			Reset:  true,
		},
	}
}

// 数据库文件默认放在可执行文件旁边
func DefaultDSN() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultDBFile
	}
	return filepath.Join(filepath.Dir(exe), DefaultDBFile)
}

// path为空时返回默认配置；文件中出现的键覆盖默认值
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("logLevel: %w", err)
	}
	if len(c.Topics) == 0 {
		return errors.New("topics: at least one topic is required")
	}
	if c.MaxPage < 1 {
		return fmt.Errorf("maxPage: must be positive, got %d", c.MaxPage)
	}
	if c.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout: must be positive, got %s", c.Fetcher.Timeout)
	}
	for i, l := range c.Fetcher.Limits {
		if l.EventCount <= 0 || l.EventDur <= 0 {
			return fmt.Errorf("fetcher.limits[%d]: eventCount and eventDur must be positive", i)
		}
	}
	if c.Pacing.Answer < 0 || c.Pacing.Page < 0 || c.Pacing.Topic < 0 {
		return errors.New("pacing: intervals must not be negative")
	}
	switch c.Storage.Driver {
	case sqldb.DriverSQLite, sqldb.DriverMySQL:
	default:
		return fmt.Errorf("storage.driver: unsupported driver %q", c.Storage.Driver)
	}
	if c.Storage.DSN == "" {
		return errors.New("storage.dsn: must not be empty")
	}
	return nil
}
