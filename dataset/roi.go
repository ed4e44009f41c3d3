package dataset

import "github.com/RoaringBitmap/roaring"

// ROI is a boolean selection over the navigation (frame) axis of a whole
// dataset. A nil *ROI means "all frames". Any non-nil ROI forces the copy
// path: the selected frames are not contiguous in general, so a single
// linear view cannot represent them.
type ROI struct {
	bits   *roaring.Bitmap
	frames int
}

// NewROI creates an empty selection over frames total frames.
func NewROI(frames int) *ROI {
	return &ROI{bits: roaring.New(), frames: frames}
}

// Frames returns the total frame count the mask covers.
func (r *ROI) Frames() int { return r.frames }

// Set selects frame i.
func (r *ROI) Set(i int) { r.bits.Add(uint32(i)) }

// Contains reports whether frame i is selected.
func (r *ROI) Contains(i int) bool { return r.bits.Contains(uint32(i)) }

// Count returns the number of selected frames.
func (r *ROI) Count() int { return int(r.bits.GetCardinality()) }

// Each calls fn for every selected frame in ascending order until fn
// returns false.
func (r *ROI) Each(fn func(i int) bool) {
	it := r.bits.Iterator()
	for it.HasNext() {
		if !fn(int(it.Next())) {
			return
		}
	}
}
