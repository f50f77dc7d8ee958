package snapshot

import (
	"errors"

	"git.fiblab.net/sim/catalogue/geo"
	"git.fiblab.net/sim/catalogue/router"
)

var (
	// 错误：快照中存在悬空id或顺序错乱
	ErrCorrupt = errors.New("snapshot corrupt")
)

type StopRecord struct {
	ID    int             `bson:"id"`
	Name  string          `bson:"name"`
	Coord geo.Coordinates `bson:"coord"`
}

type BusRecord struct {
	ID     int    `bson:"id"`
	Name   string `bson:"name"`
	Stops  []int  `bson:"stops"`
	IsLoop bool   `bson:"is_loop"`
}

// DistanceRecord 有向道路距离（单位：米）
type DistanceRecord struct {
	From   int     `bson:"from"`
	To     int     `bson:"to"`
	Meters float64 `bson:"meters"`
}

type GraphRecord struct {
	VertexCount int              `bson:"vertex_count"`
	Edges       []router.RawEdge `bson:"edges"`
}

// Snapshot catalogue+路由图的持久化形式，只含整数id
// Stops与Buses按id升序，恢复时按顺序重新添加即可得到相同的id
type Snapshot struct {
	Stops     []StopRecord     `bson:"stops"`
	Buses     []BusRecord      `bson:"buses"`
	Distances []DistanceRecord `bson:"distances"`
	Settings  router.Settings  `bson:"settings"`
	Graph     GraphRecord      `bson:"graph"`
}
