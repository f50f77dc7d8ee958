package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/catalogue/catalogue"
	"git.fiblab.net/sim/catalogue/router"
	"git.fiblab.net/sim/catalogue/snapshot"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
)

// 按位置加载路由引擎（快照文件、mongo集合或请求文档）
type loaderFunc func(ctx context.Context, location string) (*router.Router, error)

type CatalogueServer struct {
	// 查询持有读锁，Reload替换router时持有写锁
	mu     *xsync.RBMutex
	router *router.Router

	load     loaderFunc
	location string
}

func NewCatalogueServer(ctx context.Context, location string, load loaderFunc) (*CatalogueServer, error) {
	r, err := load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	return &CatalogueServer{
		mu:       xsync.NewRBMutex(),
		router:   r,
		load:     load,
		location: location,
	}, nil
}

// Handler 注册全部接口
func (s *CatalogueServer) Handler() http.Handler {
	opt := connect.WithCodec(jsonCodec{})
	mux := http.NewServeMux()
	mux.Handle(PROCEDURE_GET_BUS, connect.NewUnaryHandler(PROCEDURE_GET_BUS, s.GetBus, opt))
	mux.Handle(PROCEDURE_GET_STOP, connect.NewUnaryHandler(PROCEDURE_GET_STOP, s.GetStop, opt))
	mux.Handle(PROCEDURE_GET_TRIP, connect.NewUnaryHandler(PROCEDURE_GET_TRIP, s.GetTrip, opt))
	mux.Handle(PROCEDURE_RELOAD, connect.NewUnaryHandler(PROCEDURE_RELOAD, s.Reload, opt))
	return mux
}

func (s *CatalogueServer) GetBus(
	ctx context.Context,
	req *connect.Request[GetBusRequest],
) (*connect.Response[GetBusResponse], error) {
	in := req.Msg
	if in.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("empty bus name"))
	}
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	cat := s.router.Catalogue()
	if _, ok := cat.FindBus(in.Name); !ok {
		return nil, connect.NewError(
			connect.CodeNotFound,
			fmt.Errorf("%w: %s", catalogue.ErrBusNotFound, in.Name),
		)
	}
	stats := cat.GetRoute(in.Name)
	return connect.NewResponse(&GetBusResponse{
		Name:            stats.Name,
		Curvature:       stats.Curvature,
		RouteLength:     stats.Length,
		StopCount:       stats.StopCount,
		UniqueStopCount: stats.UniqueStopCount,
	}), nil
}

func (s *CatalogueServer) GetStop(
	ctx context.Context,
	req *connect.Request[GetStopRequest],
) (*connect.Response[GetStopResponse], error) {
	in := req.Msg
	if in.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("empty stop name"))
	}
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	buses, ok := s.router.Catalogue().GetStopBuses(in.Name)
	if !ok {
		return nil, connect.NewError(
			connect.CodeNotFound,
			fmt.Errorf("%w: %s", catalogue.ErrStopNotFound, in.Name),
		)
	}
	return connect.NewResponse(&GetStopResponse{Name: in.Name, Buses: buses}), nil
}

func (s *CatalogueServer) GetTrip(
	ctx context.Context,
	req *connect.Request[GetTripRequest],
) (*connect.Response[GetTripResponse], error) {
	in := req.Msg
	if in.From == "" || in.To == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("empty stop name"))
	}
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	log.Debugf("Search trip from %v to %v", in.From, in.To)
	trip, err := s.router.FindRoute(in.From, in.To)
	if err != nil {
		return nil, connect.NewError(connect.CodeNotFound, err)
	}
	if trip == nil {
		// 无法找到通路，返回空响应
		return connect.NewResponse(&GetTripResponse{Items: []Item{}}), nil
	}
	return connect.NewResponse(&GetTripResponse{
		Found:     true,
		TotalTime: trip.TotalTime,
		Items: lo.Map(trip.Items, func(action router.TripAction, _ int) Item {
			if action.Kind == router.EDGE_KIND_WAIT {
				return Item{Type: "Wait", StopName: action.Name, Time: action.Time}
			}
			return Item{Type: "Bus", Bus: action.Name, SpanCount: action.SpanCount, Time: action.Time}
		}),
	}), nil
}

// Reload 加载新的快照并替换当前router，失败时保留原router
func (s *CatalogueServer) Reload(
	ctx context.Context,
	req *connect.Request[ReloadRequest],
) (*connect.Response[ReloadResponse], error) {
	location := req.Msg.Snapshot
	if location == "" {
		t := s.mu.RLock()
		location = s.location
		s.mu.RUnlock(t)
	}
	// 加载期间不阻塞查询
	r, err := s.load(ctx, location)
	if err != nil {
		log.Errorf("reload %s failed: %v", location, err)
		switch {
		case errors.Is(err, os.ErrNotExist):
			return nil, connect.NewError(connect.CodeNotFound, err)
		case errors.Is(err, snapshot.ErrCorrupt), errors.Is(err, router.ErrMisconfigured):
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		default:
			return nil, connect.NewError(connect.CodeUnavailable, err)
		}
	}
	s.mu.Lock()
	s.router = r
	s.location = location
	s.mu.Unlock()
	log.Infof("reload %s: %v stops, %v edges", location, r.Catalogue().UniqueStopCount(), r.EdgeCount())
	return connect.NewResponse(&ReloadResponse{
		Snapshot:    location,
		StopCount:   r.Catalogue().UniqueStopCount(),
		BusCount:    len(r.Catalogue().Buses()),
		VertexCount: r.VertexCount(),
		EdgeCount:   r.EdgeCount(),
	}), nil
}

// 当前的router，只用于不需要与Reload互斥的场景（性能测试等）
func (s *CatalogueServer) Router() *router.Router {
	t := s.mu.RLock()
	defer s.mu.RUnlock(t)
	return s.router
}
