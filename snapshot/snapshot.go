package snapshot

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"git.fiblab.net/sim/catalogue/catalogue"
	"git.fiblab.net/sim/catalogue/router"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

var log = logrus.WithField("module", "snapshot")

// Capture 导出router及其catalogue的当前状态
func Capture(r *router.Router) *Snapshot {
	cat := r.Catalogue()
	distances := lo.MapToSlice(cat.Distances(), func(pair catalogue.StopPair, meters float64) DistanceRecord {
		return DistanceRecord{From: pair.From, To: pair.To, Meters: meters}
	})
	// map遍历顺序不定，排序保证输出稳定
	sort.Slice(distances, func(i, j int) bool {
		if distances[i].From != distances[j].From {
			return distances[i].From < distances[j].From
		}
		return distances[i].To < distances[j].To
	})
	return &Snapshot{
		Stops: lo.Map(cat.Stops(), func(s *catalogue.Stop, _ int) StopRecord {
			return StopRecord{ID: s.ID, Name: s.Name, Coord: s.Coord}
		}),
		Buses: lo.Map(cat.Buses(), func(b *catalogue.Bus, _ int) BusRecord {
			return BusRecord{ID: b.ID, Name: b.Name, Stops: append([]int(nil), b.Stops...), IsLoop: b.IsLoop}
		}),
		Distances: distances,
		Settings:  r.Settings(),
		Graph: GraphRecord{
			VertexCount: r.VertexCount(),
			Edges:       r.Edges(),
		},
	}
}

// Restore 由快照恢复catalogue与router，路由图直接注入，不重新构建
func Restore(s *Snapshot) (*router.Router, error) {
	cat := catalogue.New()
	for _, rec := range s.Stops {
		id, err := cat.AddStop(rec.Name, rec.Coord)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if id != rec.ID {
			return nil, fmt.Errorf("%w: %w: stop %s has id %d, want %d",
				ErrCorrupt, catalogue.ErrStopIDMismatch, rec.Name, rec.ID, id)
		}
	}
	for _, rec := range s.Buses {
		id, err := cat.AddRouteByIDs(rec.Name, rec.Stops, rec.IsLoop)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if id != rec.ID {
			return nil, fmt.Errorf("%w: bus %s has id %d, want %d", ErrCorrupt, rec.Name, rec.ID, id)
		}
	}
	for _, rec := range s.Distances {
		from, ok := cat.StopByID(rec.From)
		if !ok {
			return nil, fmt.Errorf("%w: distance from unknown stop id %d", ErrCorrupt, rec.From)
		}
		to, ok := cat.StopByID(rec.To)
		if !ok {
			return nil, fmt.Errorf("%w: distance to unknown stop id %d", ErrCorrupt, rec.To)
		}
		cat.SetDistance(from.Name, to.Name, rec.Meters)
	}
	r, err := router.Restore(cat, s.Settings, s.Graph.VertexCount, s.Graph.Edges)
	if err != nil {
		if errors.Is(err, router.ErrMisconfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	log.Infof("restore snapshot: %v stops, %v buses, %v distances",
		len(s.Stops), len(s.Buses), len(s.Distances))
	return r, nil
}

func Encode(s *Snapshot) ([]byte, error) {
	return bson.Marshal(s)
}

func Decode(data []byte) (*Snapshot, error) {
	s := new(Snapshot)
	if err := bson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return s, nil
}

// SaveFile 将快照以BSON写入文件
func SaveFile(path string, s *Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	log.Infof("save snapshot to %s (%v bytes)", path, len(data))
	return nil
}

func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
