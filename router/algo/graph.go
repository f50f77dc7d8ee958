package algo

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/samber/lo"
)

// 有向带权边，ID为加入图的顺序
type Edge[ET any] struct {
	ID     int
	From   int
	To     int
	Weight float64
	Attr   ET
}

// SearchGraph 点数固定的有向带权图，允许平行边
// 构建完成后只读，ShortestPath的搜索状态均为局部变量，可并发调用
type SearchGraph[ET any] struct {
	edges []Edge[ET]
	// 邻接表，node -> 出边id
	incidence [][]int
}

func NewSearchGraph[ET any](nodeCount int) *SearchGraph[ET] {
	return &SearchGraph[ET]{
		edges:     make([]Edge[ET], 0),
		incidence: make([][]int, nodeCount),
	}
}

func (g *SearchGraph[ET]) NodeCount() int {
	return len(g.incidence)
}

func (g *SearchGraph[ET]) EdgeCount() int {
	return len(g.edges)
}

// 加边，返回边id
func (g *SearchGraph[ET]) InitEdge(from, to int, weight float64, attr ET) (int, error) {
	if from < 0 || from >= len(g.incidence) {
		return -1, fmt.Errorf("%w: from=%d, nodes=%d", ErrNodeOutOfRange, from, len(g.incidence))
	}
	if to < 0 || to >= len(g.incidence) {
		return -1, fmt.Errorf("%w: to=%d, nodes=%d", ErrNodeOutOfRange, to, len(g.incidence))
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return -1, fmt.Errorf("%w: %v", ErrInvalidWeight, weight)
	}
	id := len(g.edges)
	g.edges = append(g.edges, Edge[ET]{ID: id, From: from, To: to, Weight: weight, Attr: attr})
	g.incidence[from] = append(g.incidence[from], id)
	return id, nil
}

func (g *SearchGraph[ET]) GetEdge(id int) Edge[ET] {
	return g.edges[id]
}

// 全部边，按id顺序
func (g *SearchGraph[ET]) Edges() []Edge[ET] {
	return g.edges
}

// 点的出边id
func (g *SearchGraph[ET]) IncidentEdges(node int) []int {
	return g.incidence[node]
}

// 反向回溯得到起点到终点的边序列
func (g *SearchGraph[ET]) reconstructPath(cameFrom []int, cur int) []Edge[ET] {
	pathBeforeReversed := make([]Edge[ET], 0)
	for cameFrom[cur] != -1 {
		edge := g.edges[cameFrom[cur]]
		pathBeforeReversed = append(pathBeforeReversed, edge)
		cur = edge.From
	}
	return lo.Reverse(pathBeforeReversed)
}

// Dijkstra求最短路，返回路径上的边与总代价
// 不可达时返回nil与+Inf，起点等于终点时返回空路径与0
func (g *SearchGraph[ET]) ShortestPath(start, end int) ([]Edge[ET], float64) {
	n := len(g.incidence)
	if start < 0 || start >= n || end < 0 || end >= n {
		return nil, math.Inf(1)
	}
	if start == end {
		return []Edge[ET]{}, 0
	}
	gScore := make([]float64, n)
	cameFrom := make([]int, n) // node -> 到达该点的边id
	closed := make([]bool, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		cameFrom[i] = -1
	}
	gScore[start] = 0
	openSet := PriorityQueue{{Value: start, Priority: 0, Index: 0}}
	openSetMap := map[int]*Item{start: openSet[0]} // openSet value -> openSet item
	heap.Init(&openSet)
	for openSet.Len() > 0 {
		cur := heap.Pop(&openSet).(*Item).Value
		delete(openSetMap, cur)
		if cur == end {
			return g.reconstructPath(cameFrom, cur), gScore[cur]
		}
		closed[cur] = true
		for _, edgeID := range g.incidence[cur] {
			edge := g.edges[edgeID]
			neighbor := edge.To
			if closed[neighbor] {
				continue
			}
			gScoreTentative := gScore[cur] + edge.Weight
			if gScoreTentative < gScore[neighbor] {
				cameFrom[neighbor] = edgeID
				gScore[neighbor] = gScoreTentative
				if item, ok := openSetMap[neighbor]; ok {
					// 已在堆中，修改其优先级
					item.Priority = gScoreTentative
					heap.Fix(&openSet, item.Index)
				} else {
					item := &Item{Value: neighbor, Priority: gScoreTentative}
					heap.Push(&openSet, item)
					openSetMap[neighbor] = item
				}
			}
		}
	}
	return nil, math.Inf(1)
}
