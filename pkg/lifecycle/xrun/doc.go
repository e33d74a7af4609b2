// Package xrun 基于 errgroup + context 管理一组并发任务的运行和关闭。
//
// 任一任务返回错误、父 context 取消或收到终止信号时，组内所有任务的
// context 被取消。[Run] 自动监听 [DefaultSignals]，收到信号时返回
// *[SignalError]，调用方可据此映射退出码：
//
//	err := xrun.Run(ctx, []xrun.Option{xrun.WithName("xnextsim")},
//	    func(ctx context.Context) error { return app.Run(ctx, os.Args) },
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//	    return 130
//	}
//
// [Group.SetLimit] 限制同时运行的任务数，用于有界并发的请求驱动。
package xrun
