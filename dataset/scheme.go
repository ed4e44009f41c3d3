package dataset

// TilingScheme describes the shape of one unit of delivered data: Depth
// frames per tile, each carrying Shape signal elements.
type TilingScheme struct {
	Depth int   // frames per tile, > 0
	Shape []int // per-frame signal shape
}

// SigElems returns the signal elements per frame of the scheme.
func (s *TilingScheme) SigElems() int {
	n := 1
	for _, d := range s.Shape {
		n *= d
	}
	return n
}

// Slice identifies a tile's coordinate region on the frame axis, in logical
// dataset order.
type Slice struct {
	Origin int // first frame
	Depth  int // number of frames
}

// End returns the frame index one past the last frame of the slice.
func (s Slice) End() int { return s.Origin + s.Depth }
