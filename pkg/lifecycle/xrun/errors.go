package xrun

import (
	"errors"
	"os"
)

var (
	// ErrSignal 收到终止信号，可用 errors.Is 判断。
	ErrSignal = errors.New("xrun: received signal")

	// ErrNilFunc 任务函数为 nil。
	ErrNilFunc = errors.New("xrun: nil func")
)

// SignalError 信号导致的退出原因。
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	if e.Signal == nil {
		return ErrSignal.Error()
	}
	return ErrSignal.Error() + ": " + e.Signal.String()
}

// Is 使 errors.Is(err, ErrSignal) 成立。
func (e *SignalError) Is(target error) bool {
	return target == ErrSignal
}

// ExitCode 按 shell 惯例返回 128 + 信号值，无法识别时返回 130。
func (e *SignalError) ExitCode() int {
	if n, ok := signalNumber(e.Signal); ok {
		return 128 + n
	}
	return 130
}
