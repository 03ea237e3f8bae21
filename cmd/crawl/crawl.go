package crawl

import (
	"context"
	"errors"
	"os"

	"github.com/dszqbsm/sakura/collect"
	"github.com/dszqbsm/sakura/config"
	"github.com/dszqbsm/sakura/engine"
	"github.com/dszqbsm/sakura/limiter"
	"github.com/dszqbsm/sakura/log"
	"github.com/dszqbsm/sakura/parse/zhihu"
	"github.com/dszqbsm/sakura/proxy"
	"github.com/dszqbsm/sakura/sqldb"
	"github.com/dszqbsm/sakura/sqlstorage"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type Options struct {
	ConfigPath string
	Resume     bool // 保留已有数据，从第一个未入库的回答继续
}

func NewCmd() *cobra.Command {
	var opts Options
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "crawl top answers into the store.",
		Long:  "crawl top answers of every configured topic into the store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), opts)
		},
	}
	AddFlags(cmd, &opts)
	return cmd
}

func AddFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "set yaml config file")
	cmd.Flags().BoolVar(&opts.Resume, "resume", false, "keep existing data instead of reinitializing the store")
}

func Run(ctx context.Context, opts Options) (err error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Resume {
		cfg.Storage.Reset = false
	}

	logger, closer, err := log.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
		err = multierr.Append(err, closer.Close())
	}()
	logger.Info("log init end", zap.String("level", cfg.LogLevel))

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store failed", zap.Error(err))
		return err
	}
	defer func() {
		err = multierr.Append(err, store.Close())
	}()

	f, err := NewFetcher(cfg, logger)
	if err != nil {
		return err
	}

	c := engine.NewCrawler(
		engine.WithLogger(logger.Named("engine")),
		engine.WithFetcher(f),
		engine.WithParser(zhihu.NewParser(
			zhihu.WithLogger(logger.Named("parser")),
			zhihu.WithOrigin(cfg.Origin),
		)),
		engine.WithStore(store),
		engine.WithPolicy(cfg.Pacing),
		engine.WithTopics(cfg.Topics...),
		engine.WithMaxPage(cfg.MaxPage),
		engine.WithStopOnEmpty(cfg.StopOnEmpty),
		engine.WithAbortOnMalformed(cfg.AbortOnMalformed),
	)
	stats, err := c.Run(ctx)
	if errors.Is(err, context.Canceled) {
		// 被信号中断属于正常退出，已提交的回答下次--resume时跳过
		logger.Info("crawl interrupted", zap.Int("saved", stats.Saved))
		err = nil
	}
	if err != nil {
		return err
	}

	counts, err := store.Count(context.Background())
	if err != nil {
		return err
	}
	logger.Info("store counts",
		zap.Int("answers", counts.Answers),
		zap.Int("questions", counts.Questions),
		zap.Int("labels", counts.Labels),
	)
	return nil
}

// 按配置打开数据库；Reset时清空并重建表
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlstorage.SqlStore, error) {
	reset := cfg.Storage.Reset
	if !reset && cfg.Storage.Driver == sqldb.DriverSQLite {
		if _, err := os.Stat(cfg.Storage.DSN); os.IsNotExist(err) {
			logger.Info("database file not found, initializing", zap.String("dsn", cfg.Storage.DSN))
			reset = true
		}
	}

	db, err := sqldb.New(
		sqldb.WithLogger(logger.Named("sqldb")),
		sqldb.WithDriver(cfg.Storage.Driver),
		sqldb.WithConnURL(cfg.Storage.DSN),
		sqldb.WithFresh(reset),
	)
	if err != nil {
		return nil, err
	}
	if reset {
		script, err := sqldb.Schema(cfg.Storage.Driver)
		if err != nil {
			return nil, multierr.Append(err, db.Close())
		}
		if err := db.Bootstrap(ctx, script); err != nil {
			return nil, multierr.Append(err, db.Close())
		}
	}
	return sqlstorage.New(db, sqlstorage.WithLogger(logger.Named("sqlstorage"))), nil
}

func NewFetcher(cfg *config.Config, logger *zap.Logger) (*collect.BrowserFetch, error) {
	opts := []collect.Option{
		collect.WithLogger(logger.Named("fetcher")),
		collect.WithTimeout(cfg.Fetcher.Timeout),
		collect.WithLimit(limiter.FromConfig(cfg.Fetcher.Limits)),
	}
	if cfg.Fetcher.UserAgent != "" {
		opts = append(opts, collect.WithHeaders(map[string]string{"User-Agent": cfg.Fetcher.UserAgent}))
	}
	if len(cfg.Fetcher.Proxy) > 0 {
		p, err := proxy.RoundRobinProxySwitcher(cfg.Fetcher.Proxy...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, collect.WithProxy(p))
	}
	return collect.NewBrowserFetch(opts...), nil
}
