package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/John-Robertt/mlscrape/internal/app/run"
	"github.com/John-Robertt/mlscrape/internal/config"
	"github.com/John-Robertt/mlscrape/internal/domain"
	"github.com/John-Robertt/mlscrape/internal/fetch"
	"github.com/John-Robertt/mlscrape/internal/infra/fsx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// exitCode 由 RunE 返回，用于把“已运行但失败”与 cobra 的用法错误区分开。
type exitCode int

func (c exitCode) Error() string { return fmt.Sprintf("exit status %d", int(c)) }

// execute 运行一次 CLI 并返回进程退出码：
// 0 正常完成（含 0 条记录）；1 抓取失败/配置无效/写出失败；2 用法错误。
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	v := viper.New()
	cmd := newRootCmd(v, stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var ec exitCode
	if errors.As(err, &ec) {
		return int(ec)
	}
	fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
	fmt.Fprint(stderr, cmd.UsageString())
	return 2
}

func newRootCmd(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mlscrape",
		Short:         "抓取电影列表页并导出为 JSON catalog",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configFile, _ := cmd.Flags().GetString(config.FlagConfig)
			return runOnce(cmd.Context(), v, configFile, stdout, stderr)
		},
	}
	config.RegisterFlags(cmd, v)
	return cmd
}

func runOnce(ctx context.Context, v *viper.Viper, configFile string, stdout, stderr io.Writer) error {
	eff, err := config.Load(v, configFile, ".")
	if err != nil {
		fmt.Fprintf(stderr, "配置错误：%v\n", err)
		return exitCode(1)
	}

	logger := newLogger(stderr, eff.LogLevel)
	ctx = log.WithContext(ctx, logger)

	rr, err := run.Execute(ctx, eff, run.Deps{Observer: newProgressLog(logger)})

	if eff.ReportPath != "" {
		if werr := writeReportFile(eff.ReportPath, rr); werr != nil {
			logger.Error("写入运行报告失败", "path", eff.ReportPath, "err", werr)
		}
	}

	if err != nil {
		switch {
		case errors.Is(err, run.ErrFetchFailed):
			if fetch.IsFetchFailure(err) {
				logger.Error("页面获取失败，重试已耗尽", "attempts", eff.MaxAttempts, "err", err)
			} else {
				logger.Error("页面获取失败", "err", err)
			}
			fmt.Fprintf(stdout, "抓取失败：%s\n", eff.URL)
		case fsx.IsPathTypeConflict(err):
			logger.Error("输出路径不是普通文件", "path", eff.Output, "err", err)
		default:
			logger.Error("运行失败", "err", err)
		}
		return exitCode(1)
	}

	fmt.Fprintf(stdout, "完成：写入 %d 条 movies 到 %s\n", rr.Summary.Extracted, eff.Output)
	return nil
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "mlscrape",
	})
}

func writeReportFile(path string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFile(path, b)
}
