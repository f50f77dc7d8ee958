package catalogue

import (
	"fmt"
	"sort"

	"git.fiblab.net/sim/catalogue/geo"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "catalogue")

// Catalogue 车站、线路与距离表的存储
// 加载阶段只允许单线程写入，加载完成后只读，可并发查询
type Catalogue struct {
	// 按ID存放，下标即ID
	stops []*Stop
	buses []*Bus

	stopIndex map[string]*Stop
	busIndex  map[string]*Bus

	// 显式道路距离（单位：米），有向，不自动对称
	distances map[StopPair]float64
}

func New() *Catalogue {
	return &Catalogue{
		stops:     make([]*Stop, 0),
		buses:     make([]*Bus, 0),
		stopIndex: make(map[string]*Stop),
		busIndex:  make(map[string]*Bus),
		distances: make(map[StopPair]float64),
	}
}

// 添加车站，返回新车站的ID
func (c *Catalogue) AddStop(name string, coord geo.Coordinates) (int, error) {
	if _, ok := c.stopIndex[name]; ok {
		return -1, fmt.Errorf("%w: %s", ErrDuplicateStop, name)
	}
	stop := &Stop{ID: len(c.stops), Name: name, Coord: coord}
	c.stops = append(c.stops, stop)
	c.stopIndex[name] = stop
	return stop.ID, nil
}

// 添加线路，所有车站必须已经添加
func (c *Catalogue) AddRoute(name string, stopNames []string, isLoop bool) (int, error) {
	ids := make([]int, len(stopNames))
	for i, stopName := range stopNames {
		stop, ok := c.stopIndex[stopName]
		if !ok {
			return -1, fmt.Errorf("bus %s: %w: %s", name, ErrStopNotFound, stopName)
		}
		ids[i] = stop.ID
	}
	return c.addBus(name, ids, isLoop)
}

// 按车站ID添加线路（快照恢复使用）
func (c *Catalogue) AddRouteByIDs(name string, stopIDs []int, isLoop bool) (int, error) {
	for _, id := range stopIDs {
		if id < 0 || id >= len(c.stops) {
			return -1, fmt.Errorf("bus %s: %w: id=%d", name, ErrStopNotFound, id)
		}
	}
	return c.addBus(name, append([]int(nil), stopIDs...), isLoop)
}

func (c *Catalogue) addBus(name string, ids []int, isLoop bool) (int, error) {
	if _, ok := c.busIndex[name]; ok {
		return -1, fmt.Errorf("%w: %s", ErrDuplicateBus, name)
	}
	bus := &Bus{ID: len(c.buses), Name: name, Stops: ids, IsLoop: isLoop}
	c.buses = append(c.buses, bus)
	c.busIndex[name] = bus
	return bus.ID, nil
}

// 设置from->to的道路距离，任一车站不存在时忽略
func (c *Catalogue) SetDistance(fromName, toName string, meters float64) {
	from, ok := c.stopIndex[fromName]
	if !ok {
		log.Debugf("ignore distance from unknown stop %s", fromName)
		return
	}
	to, ok := c.stopIndex[toName]
	if !ok {
		log.Debugf("ignore distance to unknown stop %s", toName)
		return
	}
	c.distances[StopPair{From: from.ID, To: to.ID}] = meters
}

// 查询道路距离：先查(from,to)，再查(to,from)，都没有返回0
// 注意：显式设置为0的距离与未设置无法区分
func (c *Catalogue) GetDistance(from, to int) float64 {
	if d, ok := c.distances[StopPair{From: from, To: to}]; ok {
		return d
	}
	if d, ok := c.distances[StopPair{From: to, To: from}]; ok {
		return d
	}
	return 0
}

// 道路距离，没有显式距离时使用球面距离
func (c *Catalogue) RoadDistance(from, to int) float64 {
	if d := c.GetDistance(from, to); d != 0 {
		return d
	}
	return geo.Distance(c.stops[from].Coord, c.stops[to].Coord)
}

// 线路统计信息，线路不存在时返回StopCount为0的结果
func (c *Catalogue) GetRoute(busName string) RouteStats {
	bus, ok := c.busIndex[busName]
	if !ok {
		return RouteStats{Name: busName}
	}
	result := RouteStats{
		Name:            bus.Name,
		StopCount:       len(bus.Stops),
		UniqueStopCount: len(lo.Uniq(bus.Stops)),
	}
	geoLength := 0.0
	for i := 0; i+1 < len(bus.Stops); i++ {
		from, to := bus.Stops[i], bus.Stops[i+1]
		geoLength += geo.Distance(c.stops[from].Coord, c.stops[to].Coord)
		result.Length += c.RoadDistance(from, to)
	}
	if !bus.IsLoop && len(bus.Stops) > 0 {
		// 返程
		for i := len(bus.Stops) - 1; i > 0; i-- {
			from, to := bus.Stops[i], bus.Stops[i-1]
			geoLength += geo.Distance(c.stops[from].Coord, c.stops[to].Coord)
			result.Length += c.RoadDistance(from, to)
		}
		result.StopCount = len(bus.Stops)*2 - 1
	}
	if geoLength > 0 {
		result.Curvature = result.Length / geoLength
	}
	return result
}

// 经过该车站的线路名（字典序），车站不存在时ok为false
func (c *Catalogue) GetStopBuses(stopName string) (names []string, ok bool) {
	stop, ok := c.stopIndex[stopName]
	if !ok {
		return nil, false
	}
	names = make([]string, 0)
	for _, bus := range c.buses {
		if lo.Contains(bus.Stops, stop.ID) {
			names = append(names, bus.Name)
		}
	}
	sort.Strings(names)
	return names, true
}

// 所有至少有一个车站的线路，按名称排序
func (c *Catalogue) GetAllRoutes() []*Bus {
	result := lo.Filter(c.buses, func(bus *Bus, _ int) bool {
		return len(bus.Stops) > 0
	})
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// getter

func (c *Catalogue) FindStop(name string) (*Stop, bool) {
	stop, ok := c.stopIndex[name]
	return stop, ok
}

func (c *Catalogue) FindBus(name string) (*Bus, bool) {
	bus, ok := c.busIndex[name]
	return bus, ok
}

func (c *Catalogue) StopByID(id int) (*Stop, bool) {
	if id < 0 || id >= len(c.stops) {
		return nil, false
	}
	return c.stops[id], true
}

func (c *Catalogue) BusByID(id int) (*Bus, bool) {
	if id < 0 || id >= len(c.buses) {
		return nil, false
	}
	return c.buses[id], true
}

// 按ID顺序的全部车站
func (c *Catalogue) Stops() []*Stop {
	return c.stops
}

// 按ID顺序的全部线路
func (c *Catalogue) Buses() []*Bus {
	return c.buses
}

// 全部显式距离
func (c *Catalogue) Distances() map[StopPair]float64 {
	return c.distances
}

// 车站总数，即图中每类点的数量
func (c *Catalogue) UniqueStopCount() int {
	return len(c.stops)
}
