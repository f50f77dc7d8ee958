package request

import (
	"io"

	"git.fiblab.net/sim/catalogue/router"
	"github.com/goccy/go-json"
	"github.com/samber/lo"
)

// Handler 基于已构建的router回答stat_requests
type Handler struct {
	router *router.Router
}

func NewHandler(r *router.Router) *Handler {
	return &Handler{router: r}
}

// HandleAll 按请求顺序返回响应
func (h *Handler) HandleAll(reqs []StatRequest) []any {
	return lo.Map(reqs, func(req StatRequest, _ int) any {
		return h.Handle(req)
	})
}

func (h *Handler) Handle(req StatRequest) any {
	switch req.Type {
	case TYPE_BUS:
		return h.handleBus(req)
	case TYPE_STOP:
		return h.handleStop(req)
	case TYPE_ROUTE:
		return h.handleRoute(req)
	case TYPE_MAP:
		// 不支持渲染
		return notFound(req)
	default:
		log.Warnf("unknown stat request type %q (id=%v)", req.Type, req.ID)
		return notFound(req)
	}
}

func (h *Handler) handleBus(req StatRequest) any {
	stats := h.router.Catalogue().GetRoute(req.Name)
	if stats.StopCount == 0 {
		return notFound(req)
	}
	return BusResponse{
		RequestID:       req.ID,
		Curvature:       stats.Curvature,
		RouteLength:     stats.Length,
		StopCount:       stats.StopCount,
		UniqueStopCount: stats.UniqueStopCount,
	}
}

func (h *Handler) handleStop(req StatRequest) any {
	buses, ok := h.router.Catalogue().GetStopBuses(req.Name)
	if !ok {
		return notFound(req)
	}
	return StopResponse{RequestID: req.ID, Buses: buses}
}

func (h *Handler) handleRoute(req StatRequest) any {
	trip, err := h.router.FindRoute(req.From, req.To)
	if err != nil {
		log.Debugf("route request %v: %v", req.ID, err)
		return notFound(req)
	}
	if trip == nil {
		return notFound(req)
	}
	return RouteResponse{
		RequestID: req.ID,
		TotalTime: trip.TotalTime,
		Items:     TripItems(trip),
	}
}

// TripItems 行程转换为响应中的items
func TripItems(trip *router.Trip) []any {
	return lo.Map(trip.Items, func(action router.TripAction, _ int) any {
		if action.Kind == router.EDGE_KIND_WAIT {
			return WaitItem{Type: ITEM_WAIT, StopName: action.Name, Time: action.Time}
		}
		return BusItem{Type: ITEM_BUS, Bus: action.Name, SpanCount: action.SpanCount, Time: action.Time}
	})
}

func notFound(req StatRequest) ErrorResponse {
	return ErrorResponse{RequestID: req.ID, ErrorMessage: NOT_FOUND}
}

// Write 以JSON数组输出响应
func Write(w io.Writer, responses []any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(responses)
}
