package snapshot_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"git.fiblab.net/general/common/v2/mongoutil"
	"git.fiblab.net/sim/catalogue/catalogue"
	"git.fiblab.net/sim/catalogue/geo"
	"git.fiblab.net/sim/catalogue/router"
	"git.fiblab.net/sim/catalogue/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var names = []string{"A", "B", "C", "D", "E"}

func newRouter(t *testing.T) *router.Router {
	c := catalogue.New()
	for i, name := range names {
		_, err := c.AddStop(name, geo.Coordinates{Lat: 55.6 + 0.01*float64(i), Lng: 37.2 + 0.02*float64(i%2)})
		require.NoError(t, err)
	}
	_, err := c.AddRoute("297", []string{"A", "B", "C", "A"}, true)
	require.NoError(t, err)
	_, err = c.AddRoute("635", []string{"C", "D", "E"}, false)
	require.NoError(t, err)
	c.SetDistance("A", "B", 2600)
	c.SetDistance("B", "C", 890)
	c.SetDistance("D", "C", 1500)
	r, err := router.New(c, router.Settings{BusWaitTime: 6, BusVelocity: 40})
	require.NoError(t, err)
	return r
}

func assertSameAnswers(t *testing.T, want, got *router.Router) {
	for _, bus := range []string{"297", "635", "404"} {
		assert.Equal(t, want.Catalogue().GetRoute(bus), got.Catalogue().GetRoute(bus))
	}
	for _, from := range names {
		buses, ok := want.Catalogue().GetStopBuses(from)
		gotBuses, gotOk := got.Catalogue().GetStopBuses(from)
		assert.Equal(t, ok, gotOk)
		assert.Equal(t, buses, gotBuses)
		for _, to := range names {
			wantTrip, err := want.FindRoute(from, to)
			require.NoError(t, err)
			gotTrip, err := got.FindRoute(from, to)
			require.NoError(t, err)
			assert.Equal(t, wantTrip, gotTrip, "%s -> %s", from, to)
		}
	}
}

func TestCaptureRestore(t *testing.T) {
	r := newRouter(t)
	s := snapshot.Capture(r)
	assert.Len(t, s.Stops, 5)
	assert.Len(t, s.Buses, 2)
	assert.Equal(t, []snapshot.DistanceRecord{
		{From: 0, To: 1, Meters: 2600},
		{From: 1, To: 2, Meters: 890},
		{From: 3, To: 2, Meters: 1500},
	}, s.Distances)
	assert.Equal(t, r.VertexCount(), s.Graph.VertexCount)

	restored, err := snapshot.Restore(s)
	require.NoError(t, err)
	assert.Equal(t, r.Settings(), restored.Settings())
	assert.Equal(t, r.Edges(), restored.Edges())
	assertSameAnswers(t, r, restored)
}

func TestFile(t *testing.T) {
	r := newRouter(t)
	path := filepath.Join(t.TempDir(), "base.db")
	require.NoError(t, snapshot.SaveFile(path, snapshot.Capture(r)))

	s, err := snapshot.LoadFile(path)
	require.NoError(t, err)
	restored, err := snapshot.Restore(s)
	require.NoError(t, err)
	assertSameAnswers(t, r, restored)

	_, err = snapshot.LoadFile(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)

	_, err = snapshot.Decode([]byte("not bson"))
	assert.ErrorIs(t, err, snapshot.ErrCorrupt)
}

func TestRestoreCorrupt(t *testing.T) {
	r := newRouter(t)

	s := snapshot.Capture(r)
	s.Stops[1].ID = 7
	_, err := snapshot.Restore(s)
	assert.ErrorIs(t, err, snapshot.ErrCorrupt)
	assert.ErrorIs(t, err, catalogue.ErrStopIDMismatch)

	s = snapshot.Capture(r)
	s.Buses[0].Stops[0] = 42
	_, err = snapshot.Restore(s)
	assert.ErrorIs(t, err, snapshot.ErrCorrupt)
	assert.ErrorIs(t, err, catalogue.ErrStopNotFound)

	s = snapshot.Capture(r)
	s.Distances[0].To = 42
	_, err = snapshot.Restore(s)
	assert.ErrorIs(t, err, snapshot.ErrCorrupt)

	s = snapshot.Capture(r)
	s.Graph.VertexCount++
	_, err = snapshot.Restore(s)
	assert.ErrorIs(t, err, snapshot.ErrCorrupt)

	s = snapshot.Capture(r)
	s.Settings.BusVelocity = 0
	_, err = snapshot.Restore(s)
	assert.ErrorIs(t, err, router.ErrMisconfigured)
}

// 需要环境变量MONGO_URI指向可写的mongodb
func TestColl(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()
	client := mongoutil.NewClient(uri)
	defer client.Disconnect(ctx)
	coll := client.Database("test").Collection("catalogue_snapshot")
	defer coll.Drop(ctx)

	r := newRouter(t)
	require.NoError(t, snapshot.SaveColl(ctx, coll, snapshot.Capture(r)))
	s, err := snapshot.LoadColl(ctx, coll)
	require.NoError(t, err)
	restored, err := snapshot.Restore(s)
	require.NoError(t, err)
	assert.Equal(t, r.Edges(), restored.Edges())
	assertSameAnswers(t, r, restored)
}
