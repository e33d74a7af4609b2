package xshim

import "errors"

var (
	// ErrNilTarget Wrap/Unwrap 的目标槽位为 nil。
	ErrNilTarget = errors.New("xshim: nil wrap target")

	// ErrNilWrapper Wrap 的包装函数为 nil。
	ErrNilWrapper = errors.New("xshim: nil wrapper")

	// ErrAlreadyWrapped 目标槽位已被包装。
	ErrAlreadyWrapped = errors.New("xshim: target already wrapped")

	// ErrNotWrapped 目标槽位未被包装。
	ErrNotWrapped = errors.New("xshim: target not wrapped")

	// ErrPanicked 被记录的函数发生 panic，panic 会继续向上传播。
	ErrPanicked = errors.New("xshim: recorded function panicked")
)
