package catalogue

import (
	"errors"

	"git.fiblab.net/sim/catalogue/geo"
)

var (
	// 错误：车站不存在
	ErrStopNotFound = errors.New("stop not found")
	// 错误：线路不存在
	ErrBusNotFound = errors.New("bus not found")
	// 错误：重复添加同名车站
	ErrDuplicateStop = errors.New("duplicate stop")
	// 错误：重复添加同名线路
	ErrDuplicateBus = errors.New("duplicate bus")
	// 错误：恢复快照时车站id与创建顺序不一致
	ErrStopIDMismatch = errors.New("stop id mismatch")
)

// Stop 车站，ID按创建顺序从0开始分配，不复用
type Stop struct {
	ID    int
	Name  string
	Coord geo.Coordinates
}

// Bus 公交线路，Stops中保存车站ID
// IsLoop为false时线路往返运行（正向+反向），为true时只正向运行
type Bus struct {
	ID     int
	Name   string
	Stops  []int
	IsLoop bool
}

// StopPair 有向车站对，用于距离表
type StopPair struct {
	From int
	To   int
}

// RouteStats 线路统计信息，StopCount为0表示线路不存在
type RouteStats struct {
	Name            string
	StopCount       int
	UniqueStopCount int
	Length          float64
	Curvature       float64
}
