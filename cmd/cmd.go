package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dszqbsm/sakura/cmd/answers"
	"github.com/dszqbsm/sakura/cmd/crawl"
	"github.com/dszqbsm/sakura/version"
	"github.com/spf13/cobra"
)

// cmd.go借助cobra库定义命令行界面：不带子命令时等同于crawl，answers用于查看已入库的回答，version用于打印版本信息
// 执行make build构建程序后，./sakura -h可以看到cobra自动生成的帮助文档

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print version.",
		Long:  "print version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version.Printer(cmd.OutOrStdout())
		},
	}
}

func NewRootCmd() *cobra.Command {
	var opts crawl.Options
	rootCmd := &cobra.Command{
		Use:          "sakura",
		Short:        "crawl zhihu top answers.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return crawl.Run(cmd.Context(), opts)
		},
	}
	crawl.AddFlags(rootCmd, &opts)
	rootCmd.AddCommand(crawl.NewCmd(), answers.NewCmd(), newVersionCmd())
	return rootCmd
}

// SIGINT/SIGTERM取消ctx，爬虫在当前步骤结束后退出
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
