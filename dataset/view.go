package dataset

// FrameView is the decoded zero-copy view over a mapped file: one row of
// signal bytes per frame, with file header, frame headers and frame footers
// sliced away. All slices returned alias the mapping and are valid until the
// owning File is closed.
type FrameView struct {
	data   []byte // raw view (file header already stripped)
	native DType
	frames int
	stride int // bytes from one frame record start to the next
	skip   int // frame header bytes skipped at each record start
	size   int // signal bytes per frame
}

// NumFrames returns the number of frames in the view.
func (v *FrameView) NumFrames() int { return v.frames }

// Native returns the element type of the viewed data.
func (v *FrameView) Native() DType { return v.native }

// FrameBytes returns the signal bytes per frame.
func (v *FrameView) FrameBytes() int { return v.size }

// Contiguous reports whether frames follow each other with no interleaved
// header/footer bytes, i.e. the view is one dense (frames, signal) block.
func (v *FrameView) Contiguous() bool {
	return v.skip == 0 && v.stride == v.size
}

// Frame returns the signal bytes of frame i.
func (v *FrameView) Frame(i int) []byte {
	off := i*v.stride + v.skip
	return v.data[off : off+v.size : off+v.size]
}

// Window returns the raw byte span covering frames [start, stop) together
// with the stride, skip and size needed to address frames inside it. The
// span includes any header/footer bytes between signal rows.
func (v *FrameView) Window(start, stop int) (data []byte, stride, skip, size int) {
	return v.data[start*v.stride : stop*v.stride], v.stride, v.skip, v.size
}
