// xnextsim 在不依赖 JS 运行时的情况下模拟 Next.js 宿主，驱动 xnext 中间件插桩。
//
// 用法:
//
//	xnextsim [全局选项] <命令> [命令参数]
//
// 命令:
//
//	run            注册中间件并并发发起请求，输出每个 span 名称的计数
//	names          打印入口表 key 对应的中间件名和 span 名称
//	help           显示帮助信息
//
// 退出码:
//
//	0: 成功
//	1: 执行失败
//	2: 参数错误（无效数值、缺少参数、未知命令等）
//	128+n: 被信号 n 中断
//
// 示例:
//
//	xnextsim run                                   # 默认路由 / 和 /api/foo
//	xnextsim run --routes /a --routes /b -n 100    # 自定义路由和请求数
//	xnextsim run --config agent.yaml --watch       # 加载配置并热更新
//	xnextsim run --async                           # 异步 getModuleContext
//	xnextsim names middleware_pages/api/foo
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xapm/pkg/lifecycle/xrun"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:     "xnextsim",
		Usage:    "Next.js 中间件插桩模拟器",
		Version:  fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Commands: createCommands(),
		Authors: []any{
			"XAPM Team",
		},
		// 禁止 urfave/cli 直接调用 os.Exit，由 run() 统一映射退出码。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	err := xrun.Run(context.Background(), []xrun.Option{xrun.WithName("xnextsim")},
		func(ctx context.Context) error { return app.Run(ctx, os.Args) },
	)
	return exitCode(err)
}

// exitCode 把命令错误映射为退出码。
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var sigErr *xrun.SignalError
	if errors.As(err, &sigErr) {
		return sigErr.ExitCode()
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	if isCLIUsageError(err) {
		// flag 解析器已向 stderr 输出错误详情
		return 2
	}
	fmt.Fprintf(os.Stderr, "错误: %v\n", err)
	return 1
}
