package router

import (
	"fmt"

	"git.fiblab.net/sim/catalogue/catalogue"
	"git.fiblab.net/sim/catalogue/router/algo"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "router")

type Router struct {
	// busGraph Topo
	//        Wait              Ride(span=1)             Wait
	// [A in]------>[A out]------------------->[B in]------>[B out]
	//                  \                                      |
	//                   \      Ride(span=2)                   | Ride(span=1)
	//                    \--------------------------->[C in]<-/
	// 1. 每个车站拆为两个点：到达点（id=stop id）与出发点（id=stop id+车站总数）
	// 2. Wait边：到达点->出发点，代价为等车时间，每个车站只有一条
	// 3. Ride边：出发点->同线路后续任一车站的到达点，代价为累计行驶时间
	catalogue *catalogue.Catalogue
	settings  Settings
	stopCount int

	busGraph *algo.SearchGraph[EdgeAttr]
}

// New 在加载完成的catalogue上构建路由图
func New(cat *catalogue.Catalogue, settings Settings) (*Router, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	r := &Router{catalogue: cat, settings: settings, stopCount: cat.UniqueStopCount()}
	if err := r.buildBusGraph(); err != nil {
		return nil, err
	}
	return r, nil
}

// Restore 直接使用持久化的图，不重新构建
func Restore(cat *catalogue.Catalogue, settings Settings, vertexCount int, edges []RawEdge) (*Router, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	stopCount := cat.UniqueStopCount()
	if vertexCount != 2*stopCount {
		return nil, fmt.Errorf("vertex count %d does not match %d stops", vertexCount, stopCount)
	}
	g := algo.NewSearchGraph[EdgeAttr](vertexCount)
	for i, e := range edges {
		attr, err := attrFromRaw(cat, e)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		if _, err := g.InitEdge(e.From, e.To, e.Weight, attr); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	log.Infof("restore bus graph: %v nodes and %v edges", g.NodeCount(), g.EdgeCount())
	return &Router{catalogue: cat, settings: settings, stopCount: stopCount, busGraph: g}, nil
}

// 由id恢复边上的名称
func attrFromRaw(cat *catalogue.Catalogue, e RawEdge) (EdgeAttr, error) {
	from, ok := cat.StopByID(e.FromStopID)
	if !ok {
		return EdgeAttr{}, fmt.Errorf("%w: id=%d", catalogue.ErrStopNotFound, e.FromStopID)
	}
	to, ok := cat.StopByID(e.ToStopID)
	if !ok {
		return EdgeAttr{}, fmt.Errorf("%w: id=%d", catalogue.ErrStopNotFound, e.ToStopID)
	}
	attr := EdgeAttr{
		Kind:       e.Kind,
		FromStopID: from.ID,
		ToStopID:   to.ID,
		RouteID:    e.RouteID,
		FromStop:   from.Name,
		ToStop:     to.Name,
		SpanCount:  e.SpanCount,
	}
	switch e.Kind {
	case EDGE_KIND_WAIT:
		stop, ok := cat.StopByID(e.RouteID)
		if !ok {
			return EdgeAttr{}, fmt.Errorf("%w: id=%d", catalogue.ErrStopNotFound, e.RouteID)
		}
		attr.Name = stop.Name
	case EDGE_KIND_RIDE:
		bus, ok := cat.BusByID(e.RouteID)
		if !ok {
			return EdgeAttr{}, fmt.Errorf("%w: id=%d", catalogue.ErrBusNotFound, e.RouteID)
		}
		attr.Name = bus.Name
	default:
		return EdgeAttr{}, fmt.Errorf("unknown edge kind %d", e.Kind)
	}
	return attr, nil
}

// getter

func (r *Router) Settings() Settings {
	return r.settings
}

func (r *Router) Catalogue() *catalogue.Catalogue {
	return r.catalogue
}

func (r *Router) VertexCount() int {
	return r.busGraph.NodeCount()
}

func (r *Router) EdgeCount() int {
	return r.busGraph.EdgeCount()
}

// 全部边（只含id），按边id顺序
func (r *Router) Edges() []RawEdge {
	return lo.Map(r.busGraph.Edges(), func(e algo.Edge[EdgeAttr], _ int) RawEdge {
		return RawEdge{
			From:       e.From,
			To:         e.To,
			Weight:     e.Weight,
			Kind:       e.Attr.Kind,
			FromStopID: e.Attr.FromStopID,
			ToStopID:   e.Attr.ToStopID,
			RouteID:    e.Attr.RouteID,
			SpanCount:  e.Attr.SpanCount,
		}
	})
}

// 车站的到达点
func (r *Router) arrivalNode(stopID int) int {
	return stopID
}

// 车站的出发点
func (r *Router) departureNode(stopID int) int {
	return stopID + r.stopCount
}
