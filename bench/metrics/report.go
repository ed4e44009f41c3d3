// Package metrics 提供运行时指标采集
package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// LatencyStats 延迟统计
type LatencyStats struct {
	P50Ms float64
	P95Ms float64
	P99Ms float64
	AvgMs float64
	N     int
}

// StageARow 阶段 A 单行数据：后端 x 瓦片深度
type StageARow struct {
	Backend     string
	TileDepth   int
	TotalFrames int
	ReadMBps    float64
	PassP50Ms   float64
	PassP99Ms   float64
	HeapAllocMB float64
}

// StageBRow 阶段 B 单行数据：数据集容量扩展
type StageBRow struct {
	TotalFrames int
	DatasetMB   float64
	ReadMBps    float64
	PassP50Ms   float64
	PassP99Ms   float64
	HeapSysMB   float64
}

// StageCRow 阶段 C 单行数据：并发分区读取
type StageCRow struct {
	Concurrency   int
	TotalFrames   int
	ReadMBps      float64
	PassP50Ms     float64
	PassP99Ms     float64
	AllocRateMBps float64
	NumGoroutine  int
}

// Percentile 计算切片中第 p 百分位（0-100），输入需已排序
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	idx := int(float64(len(sorted)-1) * p / 100)
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// LatencyStatsFromDurations 从耗时列表计算 P50/P95/P99
func LatencyStatsFromDurations(durations []time.Duration) LatencyStats {
	if len(durations) == 0 {
		return LatencyStats{}
	}
	ms := make([]float64, len(durations))
	var sum float64
	for i, d := range durations {
		ms[i] = float64(d.Nanoseconds()) / 1e6
		sum += ms[i]
	}
	sort.Float64s(ms)
	return LatencyStats{
		P50Ms: Percentile(ms, 50),
		P95Ms: Percentile(ms, 95),
		P99Ms: Percentile(ms, 99),
		AvgMs: sum / float64(len(ms)),
		N:     len(ms),
	}
}

// WriteStageACSV 写入阶段 A 报告
func WriteStageACSV(rows []StageARow, path string) error {
	return writeCSV(path,
		[]string{"Backend", "TileDepth", "TotalFrames", "ReadMBps", "PassP50Ms", "PassP99Ms", "HeapAllocMB"},
		len(rows), func(i int) []string {
			r := rows[i]
			return []string{
				r.Backend,
				fmt.Sprintf("%d", r.TileDepth),
				fmt.Sprintf("%d", r.TotalFrames),
				fmt.Sprintf("%.1f", r.ReadMBps),
				fmt.Sprintf("%.2f", r.PassP50Ms),
				fmt.Sprintf("%.2f", r.PassP99Ms),
				fmt.Sprintf("%.2f", r.HeapAllocMB),
			}
		})
}

// WriteStageBCSV 写入阶段 B 报告
func WriteStageBCSV(rows []StageBRow, path string) error {
	return writeCSV(path,
		[]string{"TotalFrames", "DatasetMB", "ReadMBps", "PassP50Ms", "PassP99Ms", "HeapSysMB"},
		len(rows), func(i int) []string {
			r := rows[i]
			return []string{
				fmt.Sprintf("%d", r.TotalFrames),
				fmt.Sprintf("%.1f", r.DatasetMB),
				fmt.Sprintf("%.1f", r.ReadMBps),
				fmt.Sprintf("%.2f", r.PassP50Ms),
				fmt.Sprintf("%.2f", r.PassP99Ms),
				fmt.Sprintf("%.2f", r.HeapSysMB),
			}
		})
}

// WriteStageCCSV 写入阶段 C 报告
func WriteStageCCSV(rows []StageCRow, path string) error {
	return writeCSV(path,
		[]string{"Concurrency", "TotalFrames", "ReadMBps", "PassP50Ms", "PassP99Ms", "AllocRateMBps", "NumGoroutine"},
		len(rows), func(i int) []string {
			r := rows[i]
			return []string{
				fmt.Sprintf("%d", r.Concurrency),
				fmt.Sprintf("%d", r.TotalFrames),
				fmt.Sprintf("%.1f", r.ReadMBps),
				fmt.Sprintf("%.2f", r.PassP50Ms),
				fmt.Sprintf("%.2f", r.PassP99Ms),
				fmt.Sprintf("%.2f", r.AllocRateMBps),
				fmt.Sprintf("%d", r.NumGoroutine),
			}
		})
}

func writeCSV(path string, header []string, n int, row func(int) []string) error {
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	w.Write(header)
	for i := 0; i < n; i++ {
		w.Write(row(i))
	}
	w.Flush()
	return w.Error()
}

// ReportDir 报告输出目录
const ReportDir = "report"

// ReportPath 生成 report/ 目录下带日期的报告路径
func ReportPath(prefix string) string {
	return filepath.Join(ReportDir, prefix+time.Now().Format("20060102")+".csv")
}
