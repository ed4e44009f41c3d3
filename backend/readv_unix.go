//go:build linux || darwin

package backend

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"

	"github.com/ic-timon/tileio/dataset"
)

// conservative IOV_MAX across platforms
const maxIovecs = 1024

// readFramesAt fills dsts from the byte ranges starting at offs in f's raw
// view with one scatter-gather syscall per batch. The gaps between
// consecutive ranges (frame headers and footers) are read into a shared
// throwaway buffer, so a whole run of frames costs a single Preadv. Batches
// are capped by maxIO bytes and the iovec limit; a non-monotonic offset
// starts a new batch.
func readFramesAt(f *dataset.File, offs []int64, dsts [][]byte, maxIO int) error {
	fd, err := f.Fd()
	if err != nil {
		return err
	}
	// offs address the raw view; the descriptor sees absolute positions
	hdr := f.FileHeader()
	var scratch []byte
	for i := 0; i < len(offs); {
		base := offs[i]
		cur := base
		iovs := make([][]byte, 0, 16)
		want := 0
		for i < len(offs) {
			if offs[i] < cur {
				break
			}
			gap := int(offs[i] - cur)
			if want > 0 && (want+gap+len(dsts[i]) > maxIO || len(iovs)+2 > maxIovecs) {
				break
			}
			if gap > 0 {
				if cap(scratch) < gap {
					scratch = make([]byte, gap)
				}
				// the same scratch buffer may back several iovecs; the
				// gap bytes are discarded anyway
				iovs = append(iovs, scratch[:gap])
				want += gap
			}
			iovs = append(iovs, dsts[i])
			want += len(dsts[i])
			cur = offs[i] + int64(len(dsts[i]))
			i++
		}
		n, err := unix.Preadv(fd, iovs, base+hdr)
		if err != nil {
			return fmt.Errorf("backend: preadv %s: %w", f.Path(), err)
		}
		if n < want {
			return fmt.Errorf("backend: preadv %s: %w", f.Path(), io.ErrUnexpectedEOF)
		}
	}
	return nil
}
