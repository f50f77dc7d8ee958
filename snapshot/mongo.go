package snapshot

import (
	"context"
	"fmt"
	"sort"

	"git.fiblab.net/sim/catalogue/router"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// 集合中每条记录为 {class: ..., data: ...}
const (
	CLASS_STOP     = "stop"
	CLASS_BUS      = "bus"
	CLASS_DISTANCE = "distance"
	CLASS_EDGE     = "edge"
	CLASS_META     = "meta"
)

// 图的元信息
type metaRecord struct {
	Settings    router.Settings `bson:"settings"`
	VertexCount int             `bson:"vertex_count"`
}

// 边按id顺序存放，index即边id
type edgeRecord struct {
	Index          int `bson:"index"`
	router.RawEdge `bson:",inline"`
}

func classDoc(class string, data any) bson.M {
	return bson.M{"class": class, "data": data}
}

// SaveColl 覆盖写入mongo集合
func SaveColl(ctx context.Context, coll *mongo.Collection, s *Snapshot) error {
	if err := coll.Drop(ctx); err != nil {
		return err
	}
	docs := make([]any, 0, 1+len(s.Stops)+len(s.Buses)+len(s.Distances)+len(s.Graph.Edges))
	docs = append(docs, classDoc(CLASS_META, metaRecord{Settings: s.Settings, VertexCount: s.Graph.VertexCount}))
	for _, rec := range s.Stops {
		docs = append(docs, classDoc(CLASS_STOP, rec))
	}
	for _, rec := range s.Buses {
		docs = append(docs, classDoc(CLASS_BUS, rec))
	}
	for _, rec := range s.Distances {
		docs = append(docs, classDoc(CLASS_DISTANCE, rec))
	}
	for i, e := range s.Graph.Edges {
		docs = append(docs, classDoc(CLASS_EDGE, edgeRecord{Index: i, RawEdge: e}))
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return err
	}
	log.Infof("save snapshot to %s.%s (%v documents)", coll.Database().Name(), coll.Name(), len(docs))
	return nil
}

// LoadColl 读取SaveColl写入的集合
func LoadColl(ctx context.Context, coll *mongo.Collection) (*Snapshot, error) {
	metas, err := findData[metaRecord](ctx, coll, CLASS_META)
	if err != nil {
		return nil, err
	}
	if len(metas) != 1 {
		return nil, fmt.Errorf("%w: %v meta documents in %s", ErrCorrupt, len(metas), coll.Name())
	}
	stops, err := findData[StopRecord](ctx, coll, CLASS_STOP)
	if err != nil {
		return nil, err
	}
	buses, err := findData[BusRecord](ctx, coll, CLASS_BUS)
	if err != nil {
		return nil, err
	}
	distances, err := findData[DistanceRecord](ctx, coll, CLASS_DISTANCE)
	if err != nil {
		return nil, err
	}
	edges, err := findData[edgeRecord](ctx, coll, CLASS_EDGE)
	if err != nil {
		return nil, err
	}
	// 查询结果无序，按id恢复顺序
	sort.Slice(stops, func(i, j int) bool { return stops[i].ID < stops[j].ID })
	sort.Slice(buses, func(i, j int) bool { return buses[i].ID < buses[j].ID })
	sort.Slice(edges, func(i, j int) bool { return edges[i].Index < edges[j].Index })
	return &Snapshot{
		Stops:     stops,
		Buses:     buses,
		Distances: distances,
		Settings:  metas[0].Settings,
		Graph: GraphRecord{
			VertexCount: metas[0].VertexCount,
			Edges: lo.Map(edges, func(e edgeRecord, _ int) router.RawEdge {
				return e.RawEdge
			}),
		},
	}, nil
}

func findData[T any](ctx context.Context, coll *mongo.Collection, class string) ([]T, error) {
	cur, err := coll.Find(ctx, bson.M{"class": class})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	result := make([]T, 0)
	for cur.Next(ctx) {
		var doc struct {
			Data T `bson:"data"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %w", ErrCorrupt, class, err)
		}
		result = append(result, doc.Data)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
