//go:build !(linux || darwin)

package backend

import "github.com/ic-timon/tileio/dataset"

// readFramesAt fills dsts from the byte ranges starting at offs in f's raw
// view using the buffered seek/read interface. Fallback for platforms
// without Preadv; maxIO batching does not apply.
func readFramesAt(f *dataset.File, offs []int64, dsts [][]byte, maxIO int) error {
	hdr := f.FileHeader()
	for i := range offs {
		if err := f.SeekTo(offs[i] + hdr); err != nil {
			return err
		}
		if _, err := f.ReadInto(dsts[i]); err != nil {
			return err
		}
	}
	return nil
}
