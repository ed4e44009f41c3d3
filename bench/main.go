// 压测入口：-stage a|b|c
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/ic-timon/tileio/backend"
	"github.com/ic-timon/tileio/dataset"
)

type stageOpts struct {
	files     int
	frames    int
	sigElems  int
	readahead bool
}

func main() {
	stage := flag.String("stage", "", "压测阶段: a(后端对比) | b(容量扩展) | c(并发分区读)")
	files := flag.Int("files", 4, "数据集文件数")
	frames := flag.Int("frames", 2048, "每文件帧数")
	sigElems := flag.Int("sig", 4096, "每帧信号元素数（uint16）")
	readahead := flag.Bool("readahead", false, "mmap 后端启用 madvise 预读")
	flag.Parse()
	opts := stageOpts{files: *files, frames: *frames, sigElems: *sigElems, readahead: *readahead}
	switch *stage {
	case "a":
		runStageA(opts)
	case "b":
		runStageB(opts)
	case "c":
		runStageC(opts)
	default:
		log.Fatalf("请指定 -stage a|b|c")
	}
	fmt.Println("压测完成")
}

// readPass 完整读取一遍数据集，返回读到的信号字节数。
// 逐帧触碰数据，保证 mmap 页真正进入内存
func readPass(b backend.Backend, req *backend.ReadRequest) (int64, error) {
	it, err := b.GetTiles(req)
	if err != nil {
		return 0, err
	}
	defer it.Close()
	var n int64
	var sink byte
	for it.Next() {
		tile := it.Tile()
		for i := 0; i < tile.NumFrames(); i++ {
			fr := tile.Frame(i)
			sink ^= fr[0] ^ fr[len(fr)-1]
			n += int64(len(fr))
		}
	}
	_ = sink
	return n, it.Err()
}

func tileRequest(fs *dataset.FileSet, ranges []dataset.ReadRange, depth, sigElems int) *backend.ReadRequest {
	return &backend.ReadRequest{
		Scheme:  &dataset.TilingScheme{Depth: depth, Shape: []int{sigElems}},
		FileSet: fs,
		Ranges:  ranges,
		Native:  dataset.Uint16,
		Read:    dataset.Uint16,
	}
}
