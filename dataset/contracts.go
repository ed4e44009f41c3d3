package dataset

// Decoder transforms raw native frame bytes into the requested read type.
// Implementations live with the dataset formats; a non-nil decoder on a
// read request means the zero-copy path is illegal. dst is sized by the
// caller for the decoded output.
type Decoder interface {
	Decode(dst, src []byte) error
}

// DecodeFunc adapts a plain function to the Decoder interface.
type DecodeFunc func(dst, src []byte) error

func (f DecodeFunc) Decode(dst, src []byte) error { return f(dst, src) }

// CorrectionSet applies externally computed corrections (defect pixels,
// gain maps, ...) to tile data in place, restricted to the given region.
// Only presence and application are consulted here; the correction data
// itself is opaque to this module.
type CorrectionSet interface {
	// HaveCorrections reports whether at least one correction is active.
	HaveCorrections() bool
	// Apply mutates data in place. data holds region.Depth frames in the
	// dt element type. Must leave data unchanged when no correction is
	// active.
	Apply(data []byte, dt DType, region Slice)
}
