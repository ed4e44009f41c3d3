// Package dataset provides the data model for multi-file, frame-oriented
// binary datasets: file handles with zero-copy mapped views, ordered file
// sets, tiling schemes, frame-selection masks and the consumer contracts
// (decoders, correction sets) referenced by the I/O backends.
//
// Quick start:
//
//	f := dataset.NewFile(dataset.FileDesc{
//		Path:        "scan_000.raw",
//		Native:      dataset.Uint16,
//		FrameHeader: 8,
//		NumFrames:   4096,
//		SigShape:    []int{256, 256},
//	})
//	if err := f.Open(); err != nil { ... }
//	defer f.Close()
//	view, _ := f.Frames()
//	first := view.Frame(0) // zero-copy signal bytes of frame 0
package dataset
