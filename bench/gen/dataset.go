// Package gen 生成压测用的合成帧数据集
package gen

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ic-timon/tileio/dataset"
)

// WriteDataset 在 dir 下写出 files 个 uint16 帧文件（每帧 sigElems 个元素，
// 帧前可带 frameHeader 字节的头），返回覆盖全部文件的 FileSet
func WriteDataset(dir string, files, framesPerFile, sigElems, frameHeader int) (*dataset.FileSet, error) {
	stride := frameHeader + sigElems*2
	buf := make([]byte, stride)
	for i := 0; i < files; i++ {
		f, err := os.Create(filePath(dir, i))
		if err != nil {
			return nil, err
		}
		for fr := 0; fr < framesPerFile; fr++ {
			for e := 0; e < sigElems; e++ {
				binary.LittleEndian.PutUint16(buf[frameHeader+e*2:], uint16((i*framesPerFile+fr+e)&0xffff))
			}
			if _, err := f.Write(buf); err != nil {
				f.Close()
				return nil, err
			}
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
	}
	return NewFileSet(dir, files, framesPerFile, sigElems, frameHeader), nil
}

// NewFileSet 只构造句柄，不写数据；文件须已由 WriteDataset 生成。
// 并发压测时每个协程用它拿自己的一组句柄
func NewFileSet(dir string, files, framesPerFile, sigElems, frameHeader int) *dataset.FileSet {
	fhs := make([]*dataset.File, files)
	for i := range fhs {
		fhs[i] = dataset.NewFile(dataset.FileDesc{
			Path:        filePath(dir, i),
			Native:      dataset.Uint16,
			FrameHeader: frameHeader,
			NumFrames:   framesPerFile,
			SigShape:    []int{sigElems},
		})
	}
	return dataset.NewFileSet(fhs)
}

// TileRanges 生成深度为 depth 的逐文件读取范围（tile 不跨文件）
func TileRanges(fs *dataset.FileSet, depth int) []dataset.ReadRange {
	var out []dataset.ReadRange
	global := 0
	for fi := 0; fi < fs.Len(); fi++ {
		f := fs.File(fi)
		stride := int64(f.FrameStride())
		for local := 0; local < f.NumFrames(); local += depth {
			d := depth
			if local+d > f.NumFrames() {
				d = f.NumFrames() - local
			}
			rr := dataset.ReadRange{
				Slice: dataset.Slice{Origin: global + local, Depth: d},
				Reads: make([]dataset.FrameRead, d),
			}
			for k := 0; k < d; k++ {
				rr.Reads[k] = dataset.FrameRead{
					FileIndex: fi,
					Offset:    int64(local+k)*stride + int64(f.FrameHeader()),
					Size:      int64(f.SigBytes()),
				}
			}
			out = append(out, rr)
		}
		global += f.NumFrames()
	}
	return out
}

func filePath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("bench_%03d.raw", i))
}
