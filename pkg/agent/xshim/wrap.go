package xshim

import (
	"context"
	"fmt"
	"log/slog"
)

type wrapEntry struct {
	name     string
	original any
}

// Wrap 把 *target 替换为 wrapper(s, *target)，并记住原值供 [Unwrap] 恢复。
//
// target 通常是宿主结构体中的函数字段地址。同一槽位重复包装返回
// [ErrAlreadyWrapped]。替换本身不与宿主对槽位的读取同步，
// 调用方应在宿主开始服务前完成包装。
func Wrap[F any](s *Shim, target *F, name string, wrapper func(*Shim, F) F) error {
	if target == nil {
		return ErrNilTarget
	}
	if wrapper == nil {
		return ErrNilWrapper
	}

	s.mu.Lock()
	if entry, ok := s.wrapped[target]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyWrapped, entry.name)
	}
	original := *target
	// 先占位再在锁外构造包装函数，wrapper 内可以调用 SetFramework 等方法
	s.wrapped[target] = wrapEntry{name: name, original: original}
	s.mu.Unlock()

	replacement := wrapper(s, original)

	s.mu.Lock()
	*target = replacement
	s.mu.Unlock()

	s.logger.Debug(context.Background(), "wrapped", slog.String("name", name))
	return nil
}

// Unwrap 恢复 Wrap 前的原值。
func Unwrap[F any](s *Shim, target *F) error {
	if target == nil {
		return ErrNilTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.wrapped[target]
	if !ok {
		return ErrNotWrapped
	}
	original, ok := entry.original.(F)
	if !ok {
		// 同一地址只能对应一种 F，不会发生
		return fmt.Errorf("%w: %s has type %T", ErrNotWrapped, entry.name, entry.original)
	}
	*target = original
	delete(s.wrapped, target)

	s.logger.Debug(context.Background(), "unwrapped", slog.String("name", entry.name))
	return nil
}

// IsWrapped 报告槽位当前是否被包装。
func IsWrapped[F any](s *Shim, target *F) bool {
	if target == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.wrapped[target]
	return ok
}
