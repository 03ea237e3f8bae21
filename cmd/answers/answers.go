package answers

// 以json lines输出已入库的回答，按赞同数从高到低

import (
	"encoding/json"

	"github.com/dszqbsm/sakura/cmd/crawl"
	"github.com/dszqbsm/sakura/config"
	"github.com/dszqbsm/sakura/log"
	"github.com/dszqbsm/sakura/sqlstorage"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

func NewCmd() *cobra.Command {
	var (
		configPath string
		opt        sqlstorage.ListOptions
	)
	cmd := &cobra.Command{
		Use:   "answers",
		Short: "print stored answers.",
		Long:  "print stored answers with the labels of their question as json lines, highest vote count first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// 只读，不能清空已有数据
			cfg.Storage.Reset = false

			lvl, err := zapcore.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			// 标准输出留给结果
			logger := log.NewLogger(log.NewStderrPlugin(lvl))
			defer func() { _ = logger.Sync() }()

			store, err := crawl.OpenStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, store.Close())
			}()

			answers, err := store.ListAnswers(cmd.Context(), opt)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			for _, a := range answers {
				if err := enc.Encode(a); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "set yaml config file")
	cmd.Flags().IntVar(&opt.Limit, "limit", 0, "max answers to print, 0 for all")
	cmd.Flags().IntVar(&opt.Offset, "offset", 0, "answers to skip, used with --limit")
	cmd.Flags().StringVar(&opt.Keyword, "key", "", "only answers whose question or answer contains the keyword")
	return cmd
}
