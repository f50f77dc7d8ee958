package main

// 服务接口的请求与响应

const (
	SERVICE_NAME = "catalogue.v1.CatalogueService"

	PROCEDURE_GET_BUS  = "/" + SERVICE_NAME + "/GetBus"
	PROCEDURE_GET_STOP = "/" + SERVICE_NAME + "/GetStop"
	PROCEDURE_GET_TRIP = "/" + SERVICE_NAME + "/GetTrip"
	PROCEDURE_RELOAD   = "/" + SERVICE_NAME + "/Reload"
)

type GetBusRequest struct {
	Name string `json:"name"`
}

type GetBusResponse struct {
	Name            string  `json:"name"`
	Curvature       float64 `json:"curvature"`
	RouteLength     float64 `json:"route_length"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}

type GetStopRequest struct {
	Name string `json:"name"`
}

type GetStopResponse struct {
	Name  string   `json:"name"`
	Buses []string `json:"buses"`
}

type GetTripRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GetTripResponse 不可达时Found为false
type GetTripResponse struct {
	Found     bool    `json:"found"`
	TotalTime float64 `json:"total_time"`
	Items     []Item  `json:"items"`
}

// Item 行程中的一步，Type为Wait时StopName有效，为Bus时Bus与SpanCount有效
type Item struct {
	Type      string  `json:"type"`
	StopName  string  `json:"stop_name,omitempty"`
	Bus       string  `json:"bus,omitempty"`
	SpanCount int     `json:"span_count,omitempty"`
	Time      float64 `json:"time"`
}

// ReloadRequest Snapshot为空时重新加载启动时的快照
type ReloadRequest struct {
	Snapshot string `json:"snapshot"`
}

type ReloadResponse struct {
	Snapshot    string `json:"snapshot"`
	StopCount   int    `json:"stop_count"`
	BusCount    int    `json:"bus_count"`
	VertexCount int    `json:"vertex_count"`
	EdgeCount   int    `json:"edge_count"`
}
