//go:build unix

package dataset

import "golang.org/x/sys/unix"

func advise(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Madvise(b, unix.MADV_WILLNEED)
}
