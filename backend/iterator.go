package backend

import "github.com/ic-timon/tileio/dataset"

// TileIterator is a finite, one-shot, pull-based tile sequence. The fileset
// is released on exhaustion, on error, and on early Close. A consumer that
// stops pulling must still call Close. Not restartable.
type TileIterator struct {
	req     *ReadRequest
	produce func(dataset.ReadRange) (*Tile, error)

	idx    int
	cur    *Tile
	err    error
	closed bool
}

func newTileIterator(req *ReadRequest, produce func(dataset.ReadRange) (*Tile, error)) *TileIterator {
	return &TileIterator{req: req, produce: produce}
}

// Next advances to the next tile, returning false when the sequence is
// exhausted or failed; the fileset is closed either way. Check Err after
// the loop.
func (it *TileIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	if it.idx >= len(it.req.Ranges) {
		it.err = it.release()
		return false
	}
	t, err := it.produce(it.req.Ranges[it.idx])
	if err != nil {
		it.err = err
		it.release() // keep the read error, not the close error
		return false
	}
	it.idx++
	if it.req.Corrections != nil {
		buf, ok := t.Contiguous()
		if !ok {
			// a mapped window with padding: only reachable with an empty
			// correction set, which must leave the data unchanged
			buf = t.data
		}
		ApplyCorrections(buf, it.req.Read, t.Slice, it.req.Corrections)
	}
	it.cur = t
	return true
}

// Tile returns the current tile. It aliases backend-owned memory and is
// valid only until the next call to Next or Close.
func (it *TileIterator) Tile() *Tile { return it.cur }

// Err returns the first error encountered during iteration or cleanup.
func (it *TileIterator) Err() error { return it.err }

// Close releases all files opened for this operation without producing
// further tiles. Safe to call more than once and after exhaustion.
func (it *TileIterator) Close() error {
	return it.release()
}

func (it *TileIterator) release() error {
	if it.closed {
		return nil
	}
	it.closed = true
	it.cur = nil
	return it.req.FileSet.CloseAll()
}
