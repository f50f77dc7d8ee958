package request

import (
	"fmt"
	"io"
	"sort"

	"git.fiblab.net/sim/catalogue/catalogue"
	"git.fiblab.net/sim/catalogue/geo"
	"git.fiblab.net/sim/catalogue/router"
	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "request")

// Read 解析JSON请求文档
func Read(r io.Reader) (*Document, error) {
	doc := new(Document)
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode request document: %w", err)
	}
	return doc, nil
}

// Load 按车站->线路->距离的顺序将base_requests写入catalogue
func (d *Document) Load(cat *catalogue.Catalogue) error {
	for _, req := range d.BaseRequests {
		if req.Type != TYPE_STOP && req.Type != TYPE_BUS {
			return fmt.Errorf("%w: base request %q (%s)", ErrUnknownType, req.Type, req.Name)
		}
	}
	stops := lo.Filter(d.BaseRequests, func(req BaseRequest, _ int) bool {
		return req.Type == TYPE_STOP
	})
	buses := lo.Filter(d.BaseRequests, func(req BaseRequest, _ int) bool {
		return req.Type == TYPE_BUS
	})
	for _, req := range stops {
		if _, err := cat.AddStop(req.Name, geo.Coordinates{Lat: req.Latitude, Lng: req.Longitude}); err != nil {
			return err
		}
	}
	for _, req := range buses {
		if _, err := cat.AddRoute(req.Name, req.Stops, req.IsRoundtrip); err != nil {
			return err
		}
	}
	for _, req := range stops {
		// map无序，排序保证日志与结果稳定
		neighbours := lo.Keys(req.RoadDistances)
		sort.Strings(neighbours)
		for _, neighbour := range neighbours {
			cat.SetDistance(req.Name, neighbour, req.RoadDistances[neighbour])
		}
	}
	log.Infof("load %v stops and %v buses", len(stops), len(buses))
	return nil
}

// Build 由文档构建catalogue与路由图
func (d *Document) Build() (*router.Router, error) {
	settings, err := d.RoutingSettings.Settings()
	if err != nil {
		return nil, err
	}
	cat := catalogue.New()
	if err := d.Load(cat); err != nil {
		return nil, err
	}
	return router.New(cat, settings)
}
