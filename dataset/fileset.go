package dataset

import "fmt"

// FileSet is the ordered collection of Files composing one dataset. The
// order is significant: read ranges index files by their position here.
// Frame ranges are contiguous and non-overlapping, derived from the frame
// counts in file order.
type FileSet struct {
	files  []*File
	ranges [][2]int // per file: [start frame, end frame), dataset-global
}

// NewFileSet builds a file set in the given order.
func NewFileSet(files []*File) *FileSet {
	ranges := make([][2]int, len(files))
	start := 0
	for i, f := range files {
		ranges[i] = [2]int{start, start + f.NumFrames()}
		start += f.NumFrames()
	}
	return &FileSet{files: files, ranges: ranges}
}

// Len returns the number of files.
func (fs *FileSet) Len() int { return len(fs.files) }

// File returns the i-th file.
func (fs *FileSet) File(i int) *File { return fs.files[i] }

// NumFrames returns the total frame count across the set.
func (fs *FileSet) NumFrames() int {
	if len(fs.ranges) == 0 {
		return 0
	}
	return fs.ranges[len(fs.ranges)-1][1]
}

// Ranges returns the per-file (start, end) frame ranges. The returned slice
// is a copy and safe to modify.
func (fs *FileSet) Ranges() [][2]int {
	out := make([][2]int, len(fs.ranges))
	copy(out, fs.ranges)
	return out
}

// Start returns the dataset-global index of the first frame of file i.
func (fs *FileSet) Start(i int) int { return fs.ranges[i][0] }

// MinFramesPerFile returns the smallest frame count held by any single
// file, or 0 for an empty set. Tiles deeper than this may span a file
// boundary.
func (fs *FileSet) MinFramesPerFile() int {
	if len(fs.files) == 0 {
		return 0
	}
	min := fs.files[0].NumFrames()
	for _, f := range fs.files[1:] {
		if n := f.NumFrames(); n < min {
			min = n
		}
	}
	return min
}

// OpenAll opens every file in order. On failure the already-opened files
// are closed before returning, so no descriptor or mapping leaks.
func (fs *FileSet) OpenAll() error {
	for i, f := range fs.files {
		if err := f.Open(); err != nil {
			for j := 0; j < i; j++ {
				fs.files[j].Close()
			}
			return fmt.Errorf("dataset: open fileset: %w", err)
		}
	}
	return nil
}

// CloseAll closes every file. All files are closed even when some fail;
// the first error wins.
func (fs *FileSet) CloseAll() error {
	var err error
	for _, f := range fs.files {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
