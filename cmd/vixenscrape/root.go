package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/vixenscrape/internal/app/scrape"
	"github.com/John-Robertt/vixenscrape/internal/config"
	"github.com/John-Robertt/vixenscrape/internal/infra/logx"
)

// loggedError 标记已经写过日志的错误，避免 main 再打印一遍。
type loggedError struct{ err error }

func (e *loggedError) Error() string { return e.err.Error() }
func (e *loggedError) Unwrap() error { return e.err }

func newRootCommand() *cobra.Command {
	var (
		configFlag   string
		logLevelFlag string
	)

	rootCmd := &cobra.Command{
		Use:   "vixenscrape [dest|save]",
		Short: "从 stdin 读取 {\"url\": ...}，抓取 Vixen 系站点的场景元数据并以 JSON 输出到 stdout",
		Long: `从 stdin 读取一个 JSON 对象 {"url": "<场景页 URL>"}，抓取页面内嵌的数据图，
在 stdout 输出一行归一化后的 JSON（title/date/details/url/studio/performers/tags/image）。

可选位置参数：
  dest   把完整数据图保存为 <dest>/<videoId>.json
  save   同上，目录取配置 save_dir（默认 ../scraperJSON/VixenNetwork）`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			cli := config.CLIArgs{
				ConfigPath:  configFlag,
				LogLevel:    logLevelFlag,
				LogLevelSet: cmd.Flags().Changed("log-level"),
			}
			if len(args) == 1 {
				cli.Dest = args[0]
				cli.DestSet = true
			}

			stderr := cmd.ErrOrStderr()
			console := false
			if f, ok := stderr.(*os.File); ok {
				console = logx.IsTerminal(f)
			}

			eff, err := config.LoadEffective(cwd, cli)
			if err != nil {
				// 配置还没加载成功，用默认级别记录这次失败。
				log, lerr := logx.New(stderr, config.DefaultLogLevel, console)
				if lerr != nil {
					return err
				}
				log.Error().Str("error_code", config.Code(err)).Err(err).Msg("加载配置失败")
				return &loggedError{err: err}
			}

			log, err := logx.New(stderr, eff.LogLevel, console)
			if err != nil {
				return err
			}

			deps, err := scrape.NewDeps(eff, log)
			if err != nil {
				return err
			}

			if err := scrape.Run(cmd.Context(), deps, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				log.Error().Str("error_code", scrape.Code(err)).Err(err).Msg("抓取失败")
				return &loggedError{err: err}
			}
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "配置文件路径（.json/.yaml；默认尝试 ./vixenscrape.json）")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "日志级别：debug|info|warn|error（默认 info）")

	return rootCmd
}
