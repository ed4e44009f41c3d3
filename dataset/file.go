package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
)

// ErrFileClosed is returned when a view or read is requested on a File that
// is not open.
var ErrFileClosed = errors.New("dataset: file not open")

// FileDesc describes the on-disk layout of one frame file.
type FileDesc struct {
	Path        string
	Native      DType // on-disk element type
	FileHeader  int64 // bytes before the first frame record
	FrameHeader int   // bytes before each frame's signal data
	FrameFooter int   // bytes after each frame's signal data
	NumFrames   int
	SigShape    []int // signal shape per frame, e.g. detector rows x cols
}

// File owns one physical file of a multi-file dataset. Open establishes a
// read-only memory mapping over the whole file and derives two views:
//
//   - the raw view: the mapping with only the file header sliced off, used
//     by the copy path, which addresses it with externally supplied byte
//     offsets and may need the header/footer bytes it still contains;
//   - the decoded view: header and footer stripped per frame, one zero-copy
//     row of signal bytes per frame, used by the zero-copy path.
//
// A File is safe for concurrent read-only view access; Close must not race
// with outstanding readers. A closed File must not be reused.
type File struct {
	desc FileDesc

	f      *os.File
	m      mmap.MMap
	raw    []byte // m with the file header sliced off
	frames *FrameView
}

// NewFile creates a handle from the layout description. No I/O happens
// until Open.
func NewFile(desc FileDesc) *File {
	return &File{desc: desc}
}

func (f *File) Path() string      { return f.desc.Path }
func (f *File) Native() DType     { return f.desc.Native }
func (f *File) NumFrames() int    { return f.desc.NumFrames }
func (f *File) FileHeader() int64 { return f.desc.FileHeader }
func (f *File) FrameHeader() int  { return f.desc.FrameHeader }
func (f *File) FrameFooter() int  { return f.desc.FrameFooter }
func (f *File) SigShape() []int   { return f.desc.SigShape }

// SigElems returns the number of signal elements per frame.
func (f *File) SigElems() int {
	n := 1
	for _, d := range f.desc.SigShape {
		n *= d
	}
	return n
}

// SigBytes returns the signal bytes per frame in the native type.
func (f *File) SigBytes() int {
	return f.SigElems() * f.desc.Native.Size()
}

// FrameStride returns the byte distance between frame record starts.
func (f *File) FrameStride() int {
	return f.desc.FrameHeader + f.SigBytes() + f.desc.FrameFooter
}

// Open opens the file for reading, maps it and builds both views.
// Frame header and footer sizes must be exact multiples of the native
// element width; element-wise slicing is undefined otherwise and Open
// fails before any view exists.
func (f *File) Open() error {
	itemsize := f.desc.Native.Size()
	if f.desc.FrameHeader%itemsize != 0 || f.desc.FrameFooter%itemsize != 0 {
		return fmt.Errorf("dataset: %s: frame header %d / footer %d not aligned to %s element width %d",
			f.desc.Path, f.desc.FrameHeader, f.desc.FrameFooter, f.desc.Native, itemsize)
	}
	fd, err := os.Open(f.desc.Path)
	if err != nil {
		return err
	}
	m, err := mmap.Map(fd, mmap.RDONLY, 0)
	if err != nil {
		fd.Close()
		return fmt.Errorf("dataset: mmap %s: %w", f.desc.Path, err)
	}
	want := f.desc.FileHeader + int64(f.desc.NumFrames)*int64(f.FrameStride())
	if int64(len(m)) < want {
		m.Unmap()
		fd.Close()
		return fmt.Errorf("dataset: %s truncated: %d bytes, layout wants %d", f.desc.Path, len(m), want)
	}
	f.f = fd
	f.m = m
	f.raw = m[f.desc.FileHeader:]
	f.frames = &FrameView{
		data:   f.raw,
		native: f.desc.Native,
		frames: f.desc.NumFrames,
		stride: f.FrameStride(),
		skip:   f.desc.FrameHeader,
		size:   f.SigBytes(),
	}
	return nil
}

// Close releases both views, the mapping and the descriptor. Safe to call
// on a handle that never opened or already closed.
func (f *File) Close() error {
	f.frames = nil
	f.raw = nil
	var err error
	if f.m != nil {
		err = f.m.Unmap()
		f.m = nil
	}
	if f.f != nil {
		if cerr := f.f.Close(); err == nil {
			err = cerr
		}
		f.f = nil
	}
	return err
}

// RawView returns the mapping with only the file header sliced off. The
// slice is valid until Close; the caller must not modify it.
func (f *File) RawView() ([]byte, error) {
	if f.raw == nil {
		return nil, ErrFileClosed
	}
	return f.raw, nil
}

// Frames returns the decoded zero-copy view. Valid until Close.
func (f *File) Frames() (*FrameView, error) {
	if f.frames == nil {
		return nil, ErrFileClosed
	}
	return f.frames, nil
}

// SeekTo positions the descriptor at an absolute file offset for a
// subsequent ReadInto.
func (f *File) SeekTo(pos int64) error {
	if f.f == nil {
		return ErrFileClosed
	}
	_, err := f.f.Seek(pos, io.SeekStart)
	return err
}

// Tell returns the current descriptor position.
func (f *File) Tell() (int64, error) {
	if f.f == nil {
		return 0, ErrFileClosed
	}
	return f.f.Seek(0, io.SeekCurrent)
}

// ReadInto fills p from the current descriptor position, bypassing the
// mapping. Short reads are an error.
func (f *File) ReadInto(p []byte) (int, error) {
	if f.f == nil {
		return 0, ErrFileClosed
	}
	return io.ReadFull(f.f, p)
}

// Fd exposes the underlying descriptor for backends that issue
// descriptor-level operations such as scatter-gather reads.
func (f *File) Fd() (int, error) {
	if f.f == nil {
		return -1, ErrFileClosed
	}
	return int(f.f.Fd()), nil
}

// AdviseWillNeed hints the kernel to fault the mapped pages in ahead of
// the first access. Advisory only; a no-op on platforms without madvise.
func (f *File) AdviseWillNeed() error {
	if f.m == nil {
		return ErrFileClosed
	}
	return advise(f.m)
}
