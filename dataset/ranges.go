package dataset

// FrameRead addresses the signal bytes of one frame inside a file's raw
// view (file header already stripped, frame header/footer not).
type FrameRead struct {
	FileIndex int   // position of the file in the FileSet
	Offset    int64 // byte offset into the file's raw view
	Size      int64 // signal bytes to read, in the native type
}

// ReadRange holds the byte-read instructions for one tile, one FrameRead
// per frame in tile order. Read ranges are produced by upstream dataset
// metadata code from the tiling scheme, ROI and sync offset; this module
// only consumes them, in the order given.
type ReadRange struct {
	Slice Slice
	Reads []FrameRead
}
