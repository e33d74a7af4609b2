package xmetrics

import "errors"

// ErrCreateInstrument 创建 OTel 指标仪表失败。
var ErrCreateInstrument = errors.New("xmetrics: create instrument failed")
