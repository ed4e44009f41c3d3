package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ic-timon/tileio/backend"
	"github.com/ic-timon/tileio/bench/gen"
	"github.com/ic-timon/tileio/bench/metrics"
)

func runStageC(opts stageOpts) {
	const passesPerWorker = 5
	const depth = 16

	concurrencies := []int{1, 4, 8, 16, 32}

	dir, err := os.MkdirTemp("", "tileio-bench-")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	fmt.Printf("阶段 C: 生成数据集 files=%d frames=%d sig=%d...\n", opts.files, opts.frames, opts.sigElems)
	if _, err := gen.WriteDataset(dir, opts.files, opts.frames, opts.sigElems, 0); err != nil {
		panic(err)
	}
	totalFrames := opts.files * opts.frames

	var rows []metrics.StageCRow
	for _, concurrency := range concurrencies {
		fmt.Printf("阶段 C: 并发数 %d\n", concurrency)

		metrics.GC()
		before := metrics.Take()

		var wg sync.WaitGroup
		var total atomic.Int64
		var failed atomic.Bool
		durations := make([]time.Duration, concurrency*passesPerWorker)
		start := time.Now()
		for c := 0; c < concurrency; c++ {
			wg.Add(1)
			go func(worker int) {
				defer wg.Done()
				bk := backend.NewMMapBackend(backend.MMapConfig{Readahead: opts.readahead})
				for p := 0; p < passesPerWorker; p++ {
					// 句柄不可复用也不支持跨协程共享，每遍取新句柄
					fs := gen.NewFileSet(dir, opts.files, opts.frames, opts.sigElems, 0)
					t1 := time.Now()
					n, err := readPass(bk, tileRequest(fs, gen.TileRanges(fs, depth), depth, opts.sigElems))
					if err != nil {
						fmt.Printf("  worker %d: %v\n", worker, err)
						failed.Store(true)
						return
					}
					durations[worker*passesPerWorker+p] = time.Since(t1)
					total.Add(n)
				}
			}(c)
		}
		wg.Wait()
		if failed.Load() {
			panic("阶段 C 读取失败")
		}
		elapsed := time.Since(start).Seconds()

		after := metrics.Take()
		allocRate, _ := metrics.Diff(before, after)
		stats := metrics.LatencyStatsFromDurations(durations)

		rows = append(rows, metrics.StageCRow{
			Concurrency:   concurrency,
			TotalFrames:   totalFrames,
			ReadMBps:      float64(total.Load()) / 1e6 / elapsed,
			PassP50Ms:     stats.P50Ms,
			PassP99Ms:     stats.P99Ms,
			AllocRateMBps: allocRate / 1e6,
			NumGoroutine:  after.NumGoroutine,
		})
		fmt.Printf("  %.1fMB/s P50=%.2fms P99=%.2fms AllocRate=%.2fMB/s\n",
			rows[len(rows)-1].ReadMBps, stats.P50Ms, stats.P99Ms, rows[len(rows)-1].AllocRateMBps)
	}

	path := metrics.ReportPath("bench_report_stage_c_")
	if err := metrics.WriteStageCCSV(rows, path); err != nil {
		panic(err)
	}
	fmt.Printf("报告已写入 %s\n", path)
}
