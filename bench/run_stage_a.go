package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ic-timon/tileio/backend"
	"github.com/ic-timon/tileio/bench/gen"
	"github.com/ic-timon/tileio/bench/metrics"
)

func runStageA(opts stageOpts) {
	const passes = 10

	depths := []int{1, 4, 16, 64}
	backends := []struct {
		name string
		b    backend.Backend
	}{
		{"mmap", backend.NewMMapBackend(backend.MMapConfig{Readahead: opts.readahead})},
		{"buffered", backend.NewBufferedBackend(backend.BufferedConfig{})},
	}

	dir, err := os.MkdirTemp("", "tileio-bench-")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	fmt.Printf("阶段 A: 生成数据集 files=%d frames=%d sig=%d...\n", opts.files, opts.frames, opts.sigElems)
	fs, err := gen.WriteDataset(dir, opts.files, opts.frames, opts.sigElems, 0)
	if err != nil {
		panic(err)
	}
	totalFrames := opts.files * opts.frames

	var rows []metrics.StageARow
	for _, bk := range backends {
		for _, depth := range depths {
			fmt.Printf("阶段 A: backend=%s depth=%d\n", bk.name, depth)

			ranges := gen.TileRanges(fs, depth)

			metrics.GC()
			durations := make([]time.Duration, passes)
			var total int64
			t0 := time.Now()
			for p := 0; p < passes; p++ {
				// 关闭过的句柄不可复用，每遍取新句柄
				pass := gen.NewFileSet(dir, opts.files, opts.frames, opts.sigElems, 0)
				t1 := time.Now()
				n, err := readPass(bk.b, tileRequest(pass, ranges, depth, opts.sigElems))
				if err != nil {
					panic(err)
				}
				durations[p] = time.Since(t1)
				total += n
			}
			elapsed := time.Since(t0).Seconds()
			stats := metrics.LatencyStatsFromDurations(durations)
			after := metrics.Take()

			rows = append(rows, metrics.StageARow{
				Backend:     bk.name,
				TileDepth:   depth,
				TotalFrames: totalFrames,
				ReadMBps:    float64(total) / 1e6 / elapsed,
				PassP50Ms:   stats.P50Ms,
				PassP99Ms:   stats.P99Ms,
				HeapAllocMB: float64(after.HeapAlloc) / 1024 / 1024,
			})
			fmt.Printf("  %.1fMB/s P50=%.2fms P99=%.2fms Heap=%.1fMB\n",
				rows[len(rows)-1].ReadMBps, stats.P50Ms, stats.P99Ms, rows[len(rows)-1].HeapAllocMB)
		}
	}

	path := metrics.ReportPath("bench_report_stage_a_")
	if err := metrics.WriteStageACSV(rows, path); err != nil {
		panic(err)
	}
	fmt.Printf("报告已写入 %s\n", path)
}
