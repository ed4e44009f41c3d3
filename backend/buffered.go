package backend

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/ic-timon/tileio/dataset"
)

func init() {
	Register("buffered", func(rec map[string]any) (Backend, error) {
		var cfg BufferedConfig
		if err := mapstructure.Decode(rec, &cfg); err != nil {
			return nil, fmt.Errorf("backend: buffered selection record: %w", err)
		}
		return NewBufferedBackend(cfg), nil
	})
}

// BufferedConfig holds the buffered backend fields of a selection record.
type BufferedConfig struct {
	// MaxIOSize caps the bytes gathered per read batch. Zero selects the
	// 1 MiB default.
	MaxIOSize int `mapstructure:"max_io_size"`
}

// OrDefault normalizes the config.
func (c BufferedConfig) OrDefault() BufferedConfig {
	if c.MaxIOSize <= 0 {
		c.MaxIOSize = DefaultMaxIOSize
	}
	return c
}

// BufferedBackend always materializes tiles, reading through the file
// descriptors instead of the mappings: frame reads are gathered with
// scatter-gather syscalls in MaxIOSize batches, then decoded into pooled
// buffers. Copying is always a legal delivery, so no eligibility check is
// needed here.
type BufferedBackend struct {
	Base
	cfg BufferedConfig
}

// NewBufferedBackend creates a buffered backend with the given settings.
func NewBufferedBackend(cfg BufferedConfig) *BufferedBackend {
	return &BufferedBackend{cfg: cfg.OrDefault()}
}

// MaxIOSize returns the configured read-batch size.
func (b *BufferedBackend) MaxIOSize() int { return b.cfg.MaxIOSize }

// GetTiles opens the fileset and returns the tile iterator.
func (b *BufferedBackend) GetTiles(req *ReadRequest) (*TileIterator, error) {
	if err := req.FileSet.OpenAll(); err != nil {
		return nil, err
	}
	return newTileIterator(req, bufferedProducer(b, req)), nil
}

// bufferedProducer stages each tile's native bytes via descriptor reads,
// then decodes them into the output buffer. Both buffers are pooled and
// recycled once the next tile is requested.
func bufferedProducer(b *BufferedBackend, req *ReadRequest) func(dataset.ReadRange) (*Tile, error) {
	pool := newBufPool()
	var prevStage, prevOut []byte
	return func(rr dataset.ReadRange) (*Tile, error) {
		pool.put(prevStage)
		pool.put(prevOut)
		prevStage, prevOut = nil, nil

		var nativeBytes int64
		for _, rd := range rr.Reads {
			nativeBytes += rd.Size
		}
		stage := pool.get(int(nativeBytes))

		// consecutive reads from the same file form one gather run
		off := 0
		for i := 0; i < len(rr.Reads); {
			j := i
			for j < len(rr.Reads) && rr.Reads[j].FileIndex == rr.Reads[i].FileIndex {
				j++
			}
			run := rr.Reads[i:j]
			offs := make([]int64, len(run))
			dsts := make([][]byte, len(run))
			for k, rd := range run {
				offs[k] = rd.Offset
				dsts[k] = stage[off : off+int(rd.Size)]
				off += int(rd.Size)
			}
			if err := readFramesAt(req.FileSet.File(run[0].FileIndex), offs, dsts, b.MaxIOSize()); err != nil {
				return nil, err
			}
			i = j
		}

		out := pool.get(int(nativeBytes) / req.Native.Size() * req.Read.Size())
		if err := decodeInto(out, stage, req); err != nil {
			return nil, err
		}
		prevStage, prevOut = stage, out

		frameBytes := 0
		if rr.Slice.Depth > 0 {
			frameBytes = len(out) / rr.Slice.Depth
		}
		return &Tile{Slice: rr.Slice, data: out, stride: frameBytes, skip: 0, size: frameBytes}, nil
	}
}
