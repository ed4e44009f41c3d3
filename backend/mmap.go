package backend

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/ic-timon/tileio/dataset"
)

func init() {
	Register("mmap", func(rec map[string]any) (Backend, error) {
		var cfg MMapConfig
		if err := mapstructure.Decode(rec, &cfg); err != nil {
			return nil, fmt.Errorf("backend: mmap selection record: %w", err)
		}
		return NewMMapBackend(cfg), nil
	})
}

// MMapConfig holds the mmap backend fields of a selection record.
type MMapConfig struct {
	// Readahead advises the kernel to fault mapped pages in ahead of the
	// first access (madvise WILLNEED).
	Readahead bool `mapstructure:"readahead"`
}

// MMapBackend serves tiles as direct views into OS-cached file pages
// whenever the request permits it, and runs the read+decode pipeline over
// the raw views when the request forces a copy.
type MMapBackend struct {
	Base
	cfg MMapConfig
}

// NewMMapBackend creates an mmap backend with the given settings.
func NewMMapBackend(cfg MMapConfig) *MMapBackend {
	return &MMapBackend{cfg: cfg}
}

// GetTiles opens the fileset and returns the tile iterator. The eligibility
// decision is taken once per request and never downgraded mid-iteration.
func (b *MMapBackend) GetTiles(req *ReadRequest) (*TileIterator, error) {
	if err := req.FileSet.OpenAll(); err != nil {
		return nil, err
	}
	if b.cfg.Readahead {
		for i := 0; i < req.FileSet.Len(); i++ {
			// advisory; a platform without madvise serves tiles all the same
			_ = req.FileSet.File(i).AdviseWillNeed()
		}
	}
	if NeedCopy(req) {
		return newTileIterator(req, copyProducer(req)), nil
	}
	return newTileIterator(req, viewProducer(req)), nil
}

// viewProducer yields zero-copy windows into the decoded views. A tile
// never spans files here: when the smallest file is shallower than the tile
// depth, NeedCopy routes the request to the copy pipeline instead.
func viewProducer(req *ReadRequest) func(dataset.ReadRange) (*Tile, error) {
	return func(rr dataset.ReadRange) (*Tile, error) {
		if len(rr.Reads) == 0 {
			return nil, fmt.Errorf("backend: empty read range at frame %d", rr.Slice.Origin)
		}
		f := req.FileSet.File(rr.Reads[0].FileIndex)
		view, err := f.Frames()
		if err != nil {
			return nil, err
		}
		// the read range addresses signal bytes; recover the physical
		// frame index inside the file from the first offset
		start := int((rr.Reads[0].Offset - int64(f.FrameHeader())) / int64(f.FrameStride()))
		stop := start + rr.Slice.Depth
		if start < 0 || stop > view.NumFrames() {
			return nil, fmt.Errorf("backend: read range [%d:%d) outside %s", start, stop, f.Path())
		}
		data, stride, skip, size := view.Window(start, stop)
		return &Tile{Slice: rr.Slice, data: data, stride: stride, skip: skip, size: size}, nil
	}
}

// copyProducer materializes tiles through the read+decode pipeline, pulling
// source bytes from the raw views frame by frame. Buffers are pooled; a
// tile's buffer is recycled once the next tile is requested.
func copyProducer(req *ReadRequest) func(dataset.ReadRange) (*Tile, error) {
	pool := newBufPool()
	var prev []byte
	return func(rr dataset.ReadRange) (*Tile, error) {
		pool.put(prev)
		prev = nil
		buf := pool.get(tileBytes(rr, req.Native, req.Read))
		out := buf
		for _, rd := range rr.Reads {
			raw, err := req.FileSet.File(rd.FileIndex).RawView()
			if err != nil {
				return nil, err
			}
			src := raw[rd.Offset : rd.Offset+rd.Size]
			dstLen := int(rd.Size) / req.Native.Size() * req.Read.Size()
			if err := decodeInto(out[:dstLen], src, req); err != nil {
				return nil, err
			}
			out = out[dstLen:]
		}
		prev = buf
		frameBytes := 0
		if rr.Slice.Depth > 0 {
			frameBytes = len(buf) / rr.Slice.Depth
		}
		return &Tile{Slice: rr.Slice, data: buf, stride: frameBytes, skip: 0, size: frameBytes}, nil
	}
}

// tileBytes returns the size of a tile's output buffer in the read type.
func tileBytes(rr dataset.ReadRange, native, read dataset.DType) int {
	var n int64
	for _, rd := range rr.Reads {
		n += rd.Size
	}
	return int(n) / native.Size() * read.Size()
}

// decodeInto runs the configured decoder, or the built-in element
// conversion when none is set.
func decodeInto(dst, src []byte, req *ReadRequest) error {
	if req.Decoder != nil {
		return req.Decoder.Decode(dst, src)
	}
	return convert(dst, src, req.Native, req.Read)
}
