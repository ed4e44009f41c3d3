package backend

import "github.com/ic-timon/tileio/dataset"

// Tile is one delivered unit of data: Slice.Depth frames of signal bytes.
// On the copy path the backing buffer is backend-owned and densely packed;
// on the zero-copy path it is a window into a file's mapping and may carry
// interleaved frame header/footer bytes, addressed through the stride. A
// tile is only valid until the next tile is requested or the iterator is
// closed, whichever comes first.
type Tile struct {
	Slice dataset.Slice

	data   []byte
	stride int // bytes between frame starts inside data
	skip   int // bytes to skip at each frame start
	size   int // signal bytes per frame
}

// NumFrames returns the frame count of the tile.
func (t *Tile) NumFrames() int { return t.Slice.Depth }

// FrameBytes returns the signal bytes per frame, in the delivered type.
func (t *Tile) FrameBytes() int { return t.size }

// Frame returns the signal bytes of frame i (0-based within the tile),
// without copying.
func (t *Tile) Frame(i int) []byte {
	off := i*t.stride + t.skip
	return t.data[off : off+t.size : off+t.size]
}

// Contiguous returns the backing buffer when the tile is laid out as one
// dense (frames, signal...) block. ok is false for mapped windows that
// still carry frame header/footer bytes.
func (t *Tile) Contiguous() ([]byte, bool) {
	if t.skip != 0 || t.stride != t.size {
		return nil, false
	}
	return t.data, true
}
