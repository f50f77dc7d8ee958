package router_test

import (
	"sync"
	"testing"

	"git.fiblab.net/sim/catalogue/catalogue"
	"git.fiblab.net/sim/catalogue/geo"
	"git.fiblab.net/sim/catalogue/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 赤道上相隔1度的车站A、B、C、D，D不在任何线路上
func newCatalogue(t *testing.T) *catalogue.Catalogue {
	c := catalogue.New()
	for i, name := range []string{"A", "B", "C", "D"} {
		_, err := c.AddStop(name, geo.Coordinates{Lat: 0, Lng: float64(i)})
		require.NoError(t, err)
	}
	return c
}

// 使相邻车站间行驶用时为minutes分钟的速度
func velocityForHop(minutes float64) float64 {
	hop := geo.Distance(geo.Coordinates{Lat: 0, Lng: 0}, geo.Coordinates{Lat: 0, Lng: 1})
	return hop / minutes * 60 / 1000
}

func TestFindRouteLoop(t *testing.T) {
	c := newCatalogue(t)
	_, err := c.AddRoute("1", []string{"A", "B", "C"}, true)
	require.NoError(t, err)
	r, err := router.New(c, router.Settings{BusWaitTime: 5, BusVelocity: velocityForHop(10)})
	require.NoError(t, err)

	trip, err := r.FindRoute("A", "C")
	require.NoError(t, err)
	require.NotNil(t, trip)
	assert.InDelta(t, 25.0, trip.TotalTime, 1e-9)
	// 直达边（20分钟）优于中途下车再等车
	require.Len(t, trip.Items, 2)
	assert.Equal(t, router.EDGE_KIND_WAIT, trip.Items[0].Kind)
	assert.Equal(t, "A", trip.Items[0].Name)
	assert.Equal(t, 5.0, trip.Items[0].Time)
	assert.Equal(t, router.EDGE_KIND_RIDE, trip.Items[1].Kind)
	assert.Equal(t, "1", trip.Items[1].Name)
	assert.Equal(t, 2, trip.Items[1].SpanCount)
	assert.InDelta(t, 20.0, trip.Items[1].Time, 1e-9)

	// 环线只有正向
	trip, err = r.FindRoute("C", "A")
	require.NoError(t, err)
	assert.Nil(t, trip)
}

func TestBuildBusGraph(t *testing.T) {
	c := newCatalogue(t)
	_, err := c.AddRoute("loop", []string{"A", "B", "C"}, true)
	require.NoError(t, err)
	_, err = c.AddRoute("line", []string{"B", "C"}, false)
	require.NoError(t, err)
	_, err = c.AddRoute("single", []string{"D"}, false)
	require.NoError(t, err)
	r, err := router.New(c, router.Settings{BusWaitTime: 6, BusVelocity: 40})
	require.NoError(t, err)

	assert.Equal(t, 8, r.VertexCount())
	edges := r.Edges()
	waits := map[int]int{}
	rides := 0
	for _, e := range edges {
		switch e.Kind {
		case router.EDGE_KIND_WAIT:
			waits[e.FromStopID]++
			assert.Equal(t, e.FromStopID, e.From)
			assert.Equal(t, e.FromStopID+4, e.To)
			assert.Equal(t, 6.0, e.Weight)
		case router.EDGE_KIND_RIDE:
			rides++
			assert.Equal(t, e.FromStopID+4, e.From)
			assert.Equal(t, e.ToStopID, e.To)
			assert.Greater(t, e.SpanCount, 0)
		}
	}
	// 每个车站只有一条Wait边，即使被多条线路经过
	assert.Equal(t, map[int]int{0: 1, 1: 1, 2: 1, 3: 1}, waits)
	// loop: A->B, A->C, B->C; line: B->C, C->B; single: 无
	assert.Equal(t, 5, rides)
}

func TestFindRouteAsymmetricDistance(t *testing.T) {
	c := newCatalogue(t)
	_, err := c.AddRoute("line", []string{"A", "B", "C"}, false)
	require.NoError(t, err)
	c.SetDistance("A", "B", 1000)
	c.SetDistance("B", "A", 2000)
	c.SetDistance("B", "C", 3000)
	// 60km/h = 1000m/min
	r, err := router.New(c, router.Settings{BusWaitTime: 2, BusVelocity: 60})
	require.NoError(t, err)

	trip, err := r.FindRoute("A", "C")
	require.NoError(t, err)
	require.NotNil(t, trip)
	assert.InDelta(t, 2+1+3, trip.TotalTime, 1e-9)

	trip, err = r.FindRoute("C", "A")
	require.NoError(t, err)
	require.NotNil(t, trip)
	// C->B没有显式距离，回退到B->C
	assert.InDelta(t, 2+3+2, trip.TotalTime, 1e-9)
	require.Len(t, trip.Items, 2)
	assert.Equal(t, 2, trip.Items[1].SpanCount)
}

func TestFindRouteTransfer(t *testing.T) {
	c := newCatalogue(t)
	_, err := c.AddRoute("1", []string{"A", "B"}, true)
	require.NoError(t, err)
	_, err = c.AddRoute("2", []string{"B", "C"}, true)
	require.NoError(t, err)
	r, err := router.New(c, router.Settings{BusWaitTime: 5, BusVelocity: velocityForHop(10)})
	require.NoError(t, err)

	trip, err := r.FindRoute("A", "C")
	require.NoError(t, err)
	require.NotNil(t, trip)
	require.Len(t, trip.Items, 4)
	assert.Equal(t, []string{"A", "1", "B", "2"}, []string{
		trip.Items[0].Name, trip.Items[1].Name, trip.Items[2].Name, trip.Items[3].Name,
	})
	assert.InDelta(t, 30.0, trip.TotalTime, 1e-9)

	sum := 0.0
	for _, item := range trip.Items {
		sum += item.Time
	}
	assert.Equal(t, sum, trip.TotalTime)
}

func TestFindRouteDegenerate(t *testing.T) {
	c := newCatalogue(t)
	_, err := c.AddRoute("1", []string{"A", "B"}, false)
	require.NoError(t, err)
	r, err := router.New(c, router.Settings{BusWaitTime: 5, BusVelocity: 30})
	require.NoError(t, err)

	// 起终点相同
	trip, err := r.FindRoute("A", "A")
	require.NoError(t, err)
	require.NotNil(t, trip)
	assert.Empty(t, trip.Items)
	assert.Equal(t, 0.0, trip.TotalTime)

	// 不可达
	trip, err = r.FindRoute("A", "D")
	require.NoError(t, err)
	assert.Nil(t, trip)

	// 车站不存在
	_, err = r.FindRoute("A", "X")
	assert.ErrorIs(t, err, catalogue.ErrStopNotFound)
	_, err = r.FindRoute("X", "A")
	assert.ErrorIs(t, err, catalogue.ErrStopNotFound)
}

func TestMisconfigured(t *testing.T) {
	c := newCatalogue(t)
	_, err := router.New(c, router.Settings{BusWaitTime: 5})
	assert.ErrorIs(t, err, router.ErrMisconfigured)
	_, err = router.New(c, router.Settings{BusWaitTime: -1, BusVelocity: 40})
	assert.ErrorIs(t, err, router.ErrMisconfigured)
	_, err = router.Restore(c, router.Settings{}, 8, nil)
	assert.ErrorIs(t, err, router.ErrMisconfigured)
}

func TestRestore(t *testing.T) {
	c := newCatalogue(t)
	_, err := c.AddRoute("1", []string{"A", "B", "C"}, false)
	require.NoError(t, err)
	_, err = c.AddRoute("2", []string{"C", "D"}, true)
	require.NoError(t, err)
	c.SetDistance("B", "C", 5000)
	settings := router.Settings{BusWaitTime: 3, BusVelocity: 45}
	built, err := router.New(c, settings)
	require.NoError(t, err)

	restored, err := router.Restore(c, built.Settings(), built.VertexCount(), built.Edges())
	require.NoError(t, err)
	assert.Equal(t, built.Edges(), restored.Edges())

	names := []string{"A", "B", "C", "D"}
	for _, from := range names {
		for _, to := range names {
			want, err := built.FindRoute(from, to)
			require.NoError(t, err)
			got, err := restored.FindRoute(from, to)
			require.NoError(t, err)
			assert.Equal(t, want, got, "%s -> %s", from, to)
		}
	}

	// 悬空的线路id
	edges := built.Edges()
	for i := range edges {
		if edges[i].Kind == router.EDGE_KIND_RIDE {
			edges[i].RouteID = 42
			break
		}
	}
	_, err = router.Restore(c, settings, built.VertexCount(), edges)
	assert.ErrorIs(t, err, catalogue.ErrBusNotFound)

	_, err = router.Restore(c, settings, 3, nil)
	assert.Error(t, err)
}

func TestFindRouteConcurrent(t *testing.T) {
	c := newCatalogue(t)
	_, err := c.AddRoute("1", []string{"A", "B", "C", "D"}, false)
	require.NoError(t, err)
	r, err := router.New(c, router.Settings{BusWaitTime: 1, BusVelocity: velocityForHop(2)})
	require.NoError(t, err)

	want, err := r.FindRoute("A", "D")
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.FindRoute("A", "D")
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
