package router

import (
	"git.fiblab.net/sim/catalogue/catalogue"
	"git.fiblab.net/sim/catalogue/router/algo"
	"github.com/samber/lo"
)

// BusGraph 车站->车站的乘车图
func (r *Router) buildBusGraph() error {
	busGraph := algo.NewSearchGraph[EdgeAttr](2 * r.stopCount)
	// 到达点是否已有Wait边
	waitCreated := make([]bool, r.stopCount)
	speed := r.settings.metersPerMinute()
	for _, bus := range r.catalogue.GetAllRoutes() {
		for _, stopID := range bus.Stops {
			if waitCreated[stopID] {
				continue
			}
			if err := r.initWaitEdge(busGraph, stopID); err != nil {
				return err
			}
			waitCreated[stopID] = true
		}
		if len(bus.Stops) < 2 {
			log.Debugf("bus %s has less than 2 stops, no ride edges", bus.Name)
			continue
		}
		if err := r.initRideEdges(busGraph, bus, bus.Stops, speed); err != nil {
			return err
		}
		if !bus.IsLoop {
			// 返程，距离不假设对称，单独累计
			backStops := lo.Reverse(append([]int(nil), bus.Stops...))
			if err := r.initRideEdges(busGraph, bus, backStops, speed); err != nil {
				return err
			}
		}
	}
	log.Infof("build bus graph: %v nodes and %v edges", busGraph.NodeCount(), busGraph.EdgeCount())
	r.busGraph = busGraph
	return nil
}

// 车站到达点->出发点的等车边
func (r *Router) initWaitEdge(g *algo.SearchGraph[EdgeAttr], stopID int) error {
	stop, _ := r.catalogue.StopByID(stopID)
	_, err := g.InitEdge(
		r.arrivalNode(stopID),
		r.departureNode(stopID),
		r.settings.BusWaitTime,
		EdgeAttr{
			Kind:       EDGE_KIND_WAIT,
			FromStopID: stopID,
			ToStopID:   stopID,
			RouteID:    stopID,
			FromStop:   stop.Name,
			ToStop:     stop.Name,
			Name:       stop.Name,
		},
	)
	return err
}

// 沿stops方向，从每个车站的出发点连向后续所有车站的到达点
func (r *Router) initRideEdges(g *algo.SearchGraph[EdgeAttr], bus *catalogue.Bus, stops []int, speed float64) error {
	for i, fromID := range stops[:len(stops)-1] {
		from, _ := r.catalogue.StopByID(fromID)
		weight := 0.0
		for j := i + 1; j < len(stops); j++ {
			toID := stops[j]
			to, _ := r.catalogue.StopByID(toID)
			weight += r.catalogue.RoadDistance(stops[j-1], toID) / speed
			_, err := g.InitEdge(
				r.departureNode(fromID),
				r.arrivalNode(toID),
				weight,
				EdgeAttr{
					Kind:       EDGE_KIND_RIDE,
					FromStopID: fromID,
					ToStopID:   toID,
					RouteID:    bus.ID,
					FromStop:   from.Name,
					ToStop:     to.Name,
					Name:       bus.Name,
					SpanCount:  j - i,
				},
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
