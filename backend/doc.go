// Package backend decides how tile data leaves the page cache, as direct
// zero-copy views into the mappings or materialized through an explicit
// read+decode path, and performs that delivery.
//
// Backends register themselves by identifier at load time and are built
// from a selection record:
//
//	b, err := backend.FromRecord(map[string]any{"id": "mmap"})
//	it, err := b.GetTiles(req)
//	defer it.Close()
//	for it.Next() {
//		tile := it.Tile() // valid until the next it.Next() or it.Close()
//	}
//	if err := it.Err(); err != nil { ... }
package backend
