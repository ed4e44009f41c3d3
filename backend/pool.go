package backend

import "sync"

// bufPool recycles copy-path tile buffers. Tiles within one read operation
// are usually uniform in size, so a single sync.Pool is enough; an
// undersized recycled buffer is simply dropped.
type bufPool struct {
	p sync.Pool
}

func newBufPool() *bufPool { return &bufPool{} }

func (bp *bufPool) get(n int) []byte {
	if b, ok := bp.p.Get().([]byte); ok && cap(b) >= n {
		return b[:n]
	}
	return make([]byte, n)
}

func (bp *bufPool) put(b []byte) {
	if b != nil {
		bp.p.Put(b)
	}
}
