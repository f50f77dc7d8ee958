package router

import (
	"fmt"
	"math"

	"git.fiblab.net/sim/catalogue/catalogue"
	"git.fiblab.net/sim/catalogue/router/algo"
	"github.com/samber/lo"
)

// FindRoute 两站之间用时最短的行程
// 车站不存在时返回错误，不可达时返回nil
func (r *Router) FindRoute(fromName, toName string) (*Trip, error) {
	from, ok := r.catalogue.FindStop(fromName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalogue.ErrStopNotFound, fromName)
	}
	to, ok := r.catalogue.FindStop(toName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", catalogue.ErrStopNotFound, toName)
	}
	// 起终点都使用到达点：出发前必须先等车，结束时必须已下车
	path, cost := r.busGraph.ShortestPath(r.arrivalNode(from.ID), r.arrivalNode(to.ID))
	if math.IsInf(cost, 1) {
		log.Debugf("no trip from %s to %s", fromName, toName)
		return nil, nil
	}
	trip := buildTrip(path)
	if trip.TotalTime != cost {
		log.Warnf("trip time %v differs from path cost %v (%s -> %s)", trip.TotalTime, cost, fromName, toName)
	}
	return trip, nil
}

// 将边序列转换为行程
func buildTrip(path []algo.Edge[EdgeAttr]) *Trip {
	return &Trip{
		Items: lo.Map(path, func(e algo.Edge[EdgeAttr], _ int) TripAction {
			return TripAction{
				Kind:      e.Attr.Kind,
				Name:      e.Attr.Name,
				Time:      e.Weight,
				SpanCount: e.Attr.SpanCount,
			}
		}),
		TotalTime: lo.SumBy(path, func(e algo.Edge[EdgeAttr]) float64 {
			return e.Weight
		}),
	}
}
