package algo_test

import (
	"container/heap"
	"testing"

	"git.fiblab.net/sim/catalogue/router/algo"
	"github.com/stretchr/testify/assert"
)

func TestPriorityQueue(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	pq.Push(&algo.Item{Value: 4, Priority: 4})
	pq.Push(&algo.Item{Value: 2, Priority: 2})
	pq.Push(&algo.Item{Value: 1, Priority: 1})
	pq.Push(&algo.Item{Value: 3, Priority: 3})

	// 建堆
	heap.Init(&pq)
	for i, item := range pq {
		assert.Equal(t, i, item.Index)
	}

	item := heap.Pop(&pq).(*algo.Item)
	assert.Equal(t, 1, item.Value)
	assert.Equal(t, -1, item.Index)
	item = heap.Pop(&pq).(*algo.Item)
	assert.Equal(t, 2, item.Value)
	assert.Equal(t, 2, pq.Len())
}

func TestPriorityQueueFix(t *testing.T) {
	pq := make(algo.PriorityQueue, 0)
	heap.Init(&pq)
	items := make(map[int]*algo.Item)
	for _, v := range []int{4, 2, 1, 3} {
		items[v] = &algo.Item{Value: v, Priority: float64(v)}
		heap.Push(&pq, items[v])
	}

	// 将Value==3的优先级改为0
	items[3].Priority = 0
	heap.Fix(&pq, items[3].Index)

	order := make([]int, 0)
	for pq.Len() > 0 {
		order = append(order, heap.Pop(&pq).(*algo.Item).Value)
	}
	assert.Equal(t, []int{3, 1, 2, 4}, order)
}
