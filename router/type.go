package router

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var (
	// 错误：路由配置缺失或非法
	ErrMisconfigured = errors.New("routing settings misconfigured")

	validate = validator.New()
)

// Settings 路由配置
type Settings struct {
	// 换乘前的等车时间（单位：分钟）
	BusWaitTime float64 `yaml:"bus_wait_time" json:"bus_wait_time" bson:"bus_wait_time" validate:"gte=0"`
	// 公交速度（单位：km/h）
	BusVelocity float64 `yaml:"bus_velocity" json:"bus_velocity" bson:"bus_velocity" validate:"gt=0"`
}

func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Join(ErrMisconfigured, err)
	}
	return nil
}

// 公交速度（单位：米/分钟）
func (s Settings) metersPerMinute() float64 {
	return s.BusVelocity * 1000 / 60
}

type EdgeKind int

const (
	// 在车站等车
	EDGE_KIND_WAIT EdgeKind = iota
	// 乘车
	EDGE_KIND_RIDE
)

func (k EdgeKind) String() string {
	switch k {
	case EDGE_KIND_WAIT:
		return "Wait"
	case EDGE_KIND_RIDE:
		return "Ride"
	default:
		return "Unknown"
	}
}

// EdgeAttr 图中边的属性
// Wait边的RouteID与Name为车站的ID与名称，Ride边的为线路的ID与名称
type EdgeAttr struct {
	Kind       EdgeKind
	FromStopID int
	ToStopID   int
	RouteID    int
	FromStop   string
	ToStop     string
	Name       string
	SpanCount  int
}

// RawEdge 只含整数id的边，用于持久化
type RawEdge struct {
	From       int      `bson:"from"`
	To         int      `bson:"to"`
	Weight     float64  `bson:"weight"`
	Kind       EdgeKind `bson:"kind"`
	FromStopID int      `bson:"from_stop"`
	ToStopID   int      `bson:"to_stop"`
	RouteID    int      `bson:"route"`
	SpanCount  int      `bson:"span_count"`
}

// TripAction 行程中的一步：在车站Name等车Time分钟，或乘坐线路Name经过SpanCount站用时Time分钟
type TripAction struct {
	Kind      EdgeKind
	Name      string
	Time      float64
	SpanCount int
}

type Trip struct {
	Items     []TripAction
	TotalTime float64
}
