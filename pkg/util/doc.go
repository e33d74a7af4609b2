// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xfuture: 泛型待定结果，支持结算回调与 context 等待
package util
