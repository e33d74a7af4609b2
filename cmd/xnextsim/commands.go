package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/xapm/pkg/agent/xshim"
	"github.com/omeyang/xapm/pkg/instrument/xnext"
	"github.com/omeyang/xapm/pkg/observability/xlog"
	"github.com/omeyang/xapm/pkg/observability/xmetrics"
)

// usageError 参数错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func newUsageError(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// isCLIUsageError 识别 urfave/cli 自身产生的参数错误（未知 flag、无效取值等）。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	for _, marker := range []string{
		"flag provided but not defined",
		"invalid value",
		"No help topic for",
		"flag needs an argument",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createRunCommand(),
		createNamesCommand(),
	}
}

// createRunCommand 创建 run 子命令。
func createRunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "注册中间件并并发发起请求",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "agent 配置文件（.yaml/.yml/.json）",
			},
			&cli.StringSliceFlag{
				Name:    "routes",
				Aliases: []string{"r"},
				Usage:   "注册中间件的路由，可重复",
				Value:   []string{"/", "/api/foo"},
			},
			&cli.IntFlag{
				Name:    "requests",
				Aliases: []string{"n"},
				Usage:   "请求总数",
				Value:   defaultRequests,
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "并发请求数",
				Value: defaultConcurrency,
			},
			&cli.BoolFlag{
				Name:  "async",
				Usage: "使用异步 getModuleContext",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "监视配置文件并热更新（需要 --config）",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := simOptions{
				configPath:  cmd.String("config"),
				routes:      cmd.StringSlice("routes"),
				requests:    cmd.Int("requests"),
				concurrency: cmd.Int("concurrency"),
				async:       cmd.Bool("async"),
				watch:       cmd.Bool("watch"),
				environ:     os.Environ(),
				out:         writerOf(cmd),
			}
			return runSimulation(ctx, opts)
		},
	}
}

// createNamesCommand 创建 names 子命令。
func createNamesCommand() *cli.Command {
	return &cli.Command{
		Name:      "names",
		Usage:     "打印中间件名和 span 名称",
		ArgsUsage: "<key> [key...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "namespace",
				Usage: "span 名称命名空间",
				Value: xshim.DefaultMiddlewareNamespace,
			},
			&cli.StringFlag{
				Name:  "framework",
				Usage: "框架名",
				Value: xshim.FrameworkNext,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return cmdNames(writerOf(cmd), cmd.Args().Slice(), cmd.String("namespace"), cmd.String("framework"))
		},
	}
}

func writerOf(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// cmdNames 每个 key 输出一行：key、中间件名、span 名称，以 tab 分隔。
func cmdNames(out io.Writer, keys []string, namespace, framework string) error {
	if len(keys) == 0 {
		return newUsageError("names 命令需要至少一个入口表 key")
	}
	if strings.TrimSpace(framework) == "" {
		return newUsageError("--framework 不能为空")
	}
	logger, cleanup, err := xlog.New().SetOutput(io.Discard).Build()
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	shim, err := xshim.New(
		xshim.WithObserver(xmetrics.NoopObserver{}),
		xshim.WithLogger(logger),
		xshim.WithMetricNames(xshim.MetricNames{Middleware: namespace}),
	)
	if err != nil {
		return err
	}
	shim.SetFramework(framework)
	m := shim.Metrics()

	for _, key := range keys {
		name := xnext.MiddlewareName(key)
		span := m.Middleware + m.Prefix + name
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", key, name, span); err != nil {
			return err
		}
	}
	return nil
}
