package request

import (
	"errors"
	"fmt"

	"git.fiblab.net/sim/catalogue/router"
)

const (
	TYPE_STOP  = "Stop"
	TYPE_BUS   = "Bus"
	TYPE_ROUTE = "Route"
	TYPE_MAP   = "Map"

	ITEM_WAIT = "Wait"
	ITEM_BUS  = "Bus"

	NOT_FOUND = "not found"
)

var (
	// 错误：未知的请求类型
	ErrUnknownType = errors.New("unknown request type")
)

// Document 完整的JSON请求文档
// make_base阶段使用base_requests、routing_settings、serialization_settings
// process_requests阶段使用serialization_settings、stat_requests
type Document struct {
	BaseRequests          []BaseRequest         `json:"base_requests"`
	RoutingSettings       *RoutingSettings      `json:"routing_settings"`
	SerializationSettings SerializationSettings `json:"serialization_settings"`
	StatRequests          []StatRequest         `json:"stat_requests"`
}

// BaseRequest 数据录入请求，Type为Stop或Bus
type BaseRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
	// Stop
	Latitude      float64            `json:"latitude"`
	Longitude     float64            `json:"longitude"`
	RoadDistances map[string]float64 `json:"road_distances"`
	// Bus
	Stops       []string `json:"stops"`
	IsRoundtrip bool     `json:"is_roundtrip"`
}

// RoutingSettings 两个字段必须同时给出
type RoutingSettings struct {
	BusWaitTime *float64 `json:"bus_wait_time"`
	BusVelocity *float64 `json:"bus_velocity"`
}

func (s *RoutingSettings) Settings() (router.Settings, error) {
	if s == nil {
		return router.Settings{}, fmt.Errorf("%w: routing_settings missing", router.ErrMisconfigured)
	}
	if s.BusWaitTime == nil {
		return router.Settings{}, fmt.Errorf("%w: bus_wait_time missing", router.ErrMisconfigured)
	}
	if s.BusVelocity == nil {
		return router.Settings{}, fmt.Errorf("%w: bus_velocity missing", router.ErrMisconfigured)
	}
	settings := router.Settings{BusWaitTime: *s.BusWaitTime, BusVelocity: *s.BusVelocity}
	return settings, settings.Validate()
}

type SerializationSettings struct {
	// 快照位置 [format: {fspath} or {db}.{col}]
	File string `json:"file"`
}

// StatRequest 查询请求
type StatRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	// Bus/Stop
	Name string `json:"name"`
	// Route
	From string `json:"from"`
	To   string `json:"to"`
}

// 响应

type ErrorResponse struct {
	RequestID    int    `json:"request_id"`
	ErrorMessage string `json:"error_message"`
}

type BusResponse struct {
	RequestID       int     `json:"request_id"`
	Curvature       float64 `json:"curvature"`
	RouteLength     float64 `json:"route_length"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}

type StopResponse struct {
	RequestID int      `json:"request_id"`
	Buses     []string `json:"buses"`
}

type RouteResponse struct {
	RequestID int     `json:"request_id"`
	TotalTime float64 `json:"total_time"`
	Items     []any   `json:"items"`
}

type WaitItem struct {
	Type     string  `json:"type"`
	StopName string  `json:"stop_name"`
	Time     float64 `json:"time"`
}

type BusItem struct {
	Type      string  `json:"type"`
	Bus       string  `json:"bus"`
	SpanCount int     `json:"span_count"`
	Time      float64 `json:"time"`
}
