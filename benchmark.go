package main

import (
	"context"
	"flag"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"math/rand"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/catalogue/catalogue"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var (
	benchmarkCount = flag.Int("benchmark.count", 1000, "the random trip query count for benchmark")
	benchmarkSeed  = flag.Int64("benchmark.seed", 0, "the seed for benchmark")
	benchmarkCPU   = flag.Int("benchmark.cpu", 1, "the cpu count for benchmark")
)

// 随机选取起终点，统计GetTrip的耗时与成功率
func runBenchmark(server *CatalogueServer) {
	log.Logger.SetLevel(logrus.WarnLevel)
	stopNames := lo.Map(server.Router().Catalogue().Stops(), func(s *catalogue.Stop, _ int) string {
		return s.Name
	})
	if len(stopNames) == 0 {
		log.Error("benchmark skipped: no stops")
		return
	}
	// 设置随机种子
	e := rand.New(rand.NewSource(*benchmarkSeed))
	// 随机生成benchmarkCount个行程请求，每个请求的起点和终点都是随机的
	reqs := make([]*connect.Request[GetTripRequest], *benchmarkCount)
	for i := 0; i < *benchmarkCount; i++ {
		reqs[i] = connect.NewRequest(&GetTripRequest{
			From: stopNames[e.Intn(len(stopNames))],
			To:   stopNames[e.Intn(len(stopNames))],
		})
	}

	// 开始benchmark
	start := time.Now()
	var success atomic.Int32
	query := func(req *connect.Request[GetTripRequest]) {
		res, err := server.GetTrip(context.Background(), req)
		if err != nil {
			log.Error("benchmark failed, err:", err)
			return
		}
		if res.Msg.Found {
			success.Add(1)
		}
	}
	if *benchmarkCPU == 1 {
		for _, req := range reqs {
			query(req)
		}
	} else {
		// 设置cpu数量
		runtime.GOMAXPROCS(*benchmarkCPU)
		var wg sync.WaitGroup
		wg.Add(*benchmarkCount)
		for _, req := range reqs {
			go func(req *connect.Request[GetTripRequest]) {
				defer wg.Done()
				query(req)
			}(req)
		}
		wg.Wait()
	}
	timeCost := time.Since(start) * time.Duration(*benchmarkCPU)
	log.Error(
		"benchmark finished", "\n",
		"count:", *benchmarkCount, "\n",
		"time:", timeCost, "\n",
		"avg:", timeCost/time.Duration(max(*benchmarkCount, 1)), "\n",
		"success:", success.Load(), "\n",
	)
}
