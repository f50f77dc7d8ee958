package algo

import "errors"

var (
	// 错误：点不存在
	ErrNodeOutOfRange = errors.New("node out of range")
	// 错误：边权为负或非数
	ErrInvalidWeight = errors.New("edge weight should be finite and non-negative")
)
