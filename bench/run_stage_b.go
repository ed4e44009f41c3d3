package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ic-timon/tileio/backend"
	"github.com/ic-timon/tileio/bench/gen"
	"github.com/ic-timon/tileio/bench/metrics"
)

func runStageB(opts stageOpts) {
	const passes = 5
	const depth = 16

	scales := []int{1, 2, 4, 8}
	bk := backend.NewMMapBackend(backend.MMapConfig{Readahead: opts.readahead})

	var rows []metrics.StageBRow
	for _, scale := range scales {
		frames := opts.frames * scale
		totalFrames := opts.files * frames
		datasetMB := float64(totalFrames) * float64(opts.sigElems) * 2 / 1e6
		fmt.Printf("阶段 B: 生成数据集 frames=%d (%.0fMB)...\n", totalFrames, datasetMB)

		dir, err := os.MkdirTemp("", "tileio-bench-")
		if err != nil {
			panic(err)
		}
		fs, err := gen.WriteDataset(dir, opts.files, frames, opts.sigElems, 0)
		if err != nil {
			os.RemoveAll(dir)
			panic(err)
		}
		ranges := gen.TileRanges(fs, depth)

		metrics.GC()
		durations := make([]time.Duration, passes)
		var total int64
		t0 := time.Now()
		for p := 0; p < passes; p++ {
			pass := gen.NewFileSet(dir, opts.files, frames, opts.sigElems, 0)
			t1 := time.Now()
			n, err := readPass(bk, tileRequest(pass, ranges, depth, opts.sigElems))
			if err != nil {
				os.RemoveAll(dir)
				panic(err)
			}
			durations[p] = time.Since(t1)
			total += n
		}
		elapsed := time.Since(t0).Seconds()
		stats := metrics.LatencyStatsFromDurations(durations)
		after := metrics.Take()
		os.RemoveAll(dir)

		rows = append(rows, metrics.StageBRow{
			TotalFrames: totalFrames,
			DatasetMB:   datasetMB,
			ReadMBps:    float64(total) / 1e6 / elapsed,
			PassP50Ms:   stats.P50Ms,
			PassP99Ms:   stats.P99Ms,
			HeapSysMB:   float64(after.HeapSys) / 1024 / 1024,
		})
		fmt.Printf("  %.1fMB/s P50=%.2fms P99=%.2fms HeapSys=%.1fMB\n",
			rows[len(rows)-1].ReadMBps, stats.P50Ms, stats.P99Ms, rows[len(rows)-1].HeapSysMB)
	}

	path := metrics.ReportPath("bench_report_stage_b_")
	if err := metrics.WriteStageBCSV(rows, path); err != nil {
		panic(err)
	}
	fmt.Printf("报告已写入 %s\n", path)
}
