package backend

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ic-timon/tileio/dataset"
)

// buildDataset writes a multi-file dataset under dir with deterministic
// signal bytes and returns the fileset plus the concatenated signal bytes
// of all frames in dataset order.
func buildDataset(t *testing.T, dir string, framesPerFile []int, native dataset.DType, sigElems, frameHeader, frameFooter int) (*dataset.FileSet, []byte) {
	t.Helper()
	sigBytes := sigElems * native.Size()
	stride := frameHeader + sigBytes + frameFooter
	var files []*dataset.File
	var want []byte
	global := 0
	for i, n := range framesPerFile {
		path := filepath.Join(dir, fmt.Sprintf("part_%02d.raw", i))
		data := make([]byte, n*stride)
		for f := 0; f < n; f++ {
			sig := data[f*stride+frameHeader : f*stride+frameHeader+sigBytes]
			for k := range sig {
				sig[k] = byte((global*7 + k*3) % 250)
			}
			want = append(want, sig...)
			global++
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		files = append(files, dataset.NewFile(dataset.FileDesc{
			Path:        path,
			Native:      native,
			FrameHeader: frameHeader,
			FrameFooter: frameFooter,
			NumFrames:   n,
			SigShape:    []int{sigElems},
		}))
	}
	return dataset.NewFileSet(files), want
}

// tileRanges builds per-file read ranges of the given depth; the last tile
// of each file may be shorter. Tiles never span files.
func tileRanges(fs *dataset.FileSet, depth int) []dataset.ReadRange {
	var out []dataset.ReadRange
	for fi := 0; fi < fs.Len(); fi++ {
		f := fs.File(fi)
		start := fs.Start(fi)
		for local := 0; local < f.NumFrames(); local += depth {
			d := min(depth, f.NumFrames()-local)
			rr := dataset.ReadRange{Slice: dataset.Slice{Origin: start + local, Depth: d}}
			for k := 0; k < d; k++ {
				rr.Reads = append(rr.Reads, dataset.FrameRead{
					FileIndex: fi,
					Offset:    int64((local+k)*f.FrameStride() + f.FrameHeader()),
					Size:      int64(f.SigBytes()),
				})
			}
			out = append(out, rr)
		}
	}
	return out
}

// globalTileRanges builds read ranges of the given depth over the whole
// dataset; tiles may span file boundaries.
func globalTileRanges(fs *dataset.FileSet, depth int) []dataset.ReadRange {
	ranges := fs.Ranges()
	total := fs.NumFrames()
	var out []dataset.ReadRange
	for origin := 0; origin < total; origin += depth {
		d := min(depth, total-origin)
		rr := dataset.ReadRange{Slice: dataset.Slice{Origin: origin, Depth: d}}
		for k := 0; k < d; k++ {
			g := origin + k
			fi := 0
			for ranges[fi][1] <= g {
				fi++
			}
			f := fs.File(fi)
			local := g - ranges[fi][0]
			rr.Reads = append(rr.Reads, dataset.FrameRead{
				FileIndex: fi,
				Offset:    int64(local*f.FrameStride() + f.FrameHeader()),
				Size:      int64(f.SigBytes()),
			})
		}
		out = append(out, rr)
	}
	return out
}

func collect(t *testing.T, it *TileIterator) []byte {
	t.Helper()
	var got []byte
	for it.Next() {
		tile := it.Tile()
		for i := 0; i < tile.NumFrames(); i++ {
			got = append(got, tile.Frame(i)...)
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	return got
}

func TestMMapZeroCopyEndToEnd(t *testing.T) {
	fs, want := buildDataset(t, t.TempDir(), []int{5, 5}, dataset.Uint16, 4, 0, 0)
	req := &ReadRequest{
		Scheme:  &dataset.TilingScheme{Depth: 3, Shape: []int{4}},
		FileSet: fs,
		Ranges:  tileRanges(fs, 3),
		Native:  dataset.Uint16,
		Read:    dataset.Uint16,
	}
	if NeedCopy(req) {
		t.Fatal("request classified as copy; zero-copy expected")
	}

	it, err := NewMMapBackend(MMapConfig{}).GetTiles(req)
	if err != nil {
		t.Fatalf("get tiles: %v", err)
	}
	defer it.Close()

	var got []byte
	tiles := 0
	for it.Next() {
		tile := it.Tile()
		if tiles == 0 {
			raw, err := fs.File(0).RawView()
			if err != nil {
				t.Fatalf("raw view: %v", err)
			}
			if &tile.Frame(0)[0] != &raw[0] {
				t.Error("tile does not alias the mapping")
			}
			if _, ok := tile.Contiguous(); !ok {
				t.Error("headerless view tile should be contiguous")
			}
		}
		for i := 0; i < tile.NumFrames(); i++ {
			got = append(got, tile.Frame(i)...)
		}
		tiles++
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if tiles != 4 { // 3+2 frames per file
		t.Errorf("tiles: got %d want 4", tiles)
	}
	if !bytes.Equal(got, want) {
		t.Error("concatenated tiles do not reproduce the dataset")
	}
	// exhaustion released the fileset
	if _, err := fs.File(0).Frames(); !errors.Is(err, dataset.ErrFileClosed) {
		t.Errorf("file left open after exhaustion: %v", err)
	}
}

func TestMMapZeroCopyStridedView(t *testing.T) {
	// frame headers/footers stay in the mapped window; Frame addresses
	// around them
	fs, want := buildDataset(t, t.TempDir(), []int{4, 4}, dataset.Uint16, 4, 4, 2)
	req := &ReadRequest{
		Scheme:  &dataset.TilingScheme{Depth: 2, Shape: []int{4}},
		FileSet: fs,
		Ranges:  tileRanges(fs, 2),
		Native:  dataset.Uint16,
		Read:    dataset.Uint16,
	}
	if NeedCopy(req) {
		t.Fatal("request classified as copy; zero-copy expected")
	}
	it, err := NewMMapBackend(MMapConfig{Readahead: true}).GetTiles(req)
	if err != nil {
		t.Fatalf("get tiles: %v", err)
	}
	defer it.Close()

	sawStrided := false
	var got []byte
	for it.Next() {
		tile := it.Tile()
		if _, ok := tile.Contiguous(); !ok {
			sawStrided = true
		}
		for i := 0; i < tile.NumFrames(); i++ {
			got = append(got, tile.Frame(i)...)
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if !sawStrided {
		t.Error("padded view tiles should not report contiguous")
	}
	if !bytes.Equal(got, want) {
		t.Error("strided tiles do not reproduce the dataset")
	}
}

func TestMMapCopyPathWithCorrections(t *testing.T) {
	fs, want := buildDataset(t, t.TempDir(), []int{5, 5}, dataset.Uint16, 4, 0, 0)
	corr := &countingCorrections{active: true}
	req := &ReadRequest{
		Scheme:      &dataset.TilingScheme{Depth: 3, Shape: []int{4}},
		FileSet:     fs,
		Ranges:      tileRanges(fs, 3),
		Native:      dataset.Uint16,
		Read:        dataset.Uint16,
		Corrections: corr,
	}
	if !NeedCopy(req) {
		t.Fatal("active corrections must force the copy path")
	}
	it, err := NewMMapBackend(MMapConfig{}).GetTiles(req)
	if err != nil {
		t.Fatalf("get tiles: %v", err)
	}
	defer it.Close()

	first := true
	var got []byte
	for it.Next() {
		tile := it.Tile()
		if first {
			raw, err := fs.File(0).RawView()
			if err != nil {
				t.Fatalf("raw view: %v", err)
			}
			if &tile.Frame(0)[0] == &raw[0] {
				t.Error("copy-path tile aliases the mapping")
			}
			first = false
		}
		for i := 0; i < tile.NumFrames(); i++ {
			got = append(got, tile.Frame(i)...)
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(corr.regions) != 4 {
		t.Errorf("corrections applied to %d tiles, want 4", len(corr.regions))
	}
	if len(got) != len(want) {
		t.Fatalf("got %d bytes want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i]+1 {
			t.Fatalf("byte %d: got %d want %d (corrected)", i, got[i], want[i]+1)
		}
	}
	// the mapping itself must not have been mutated: re-read and compare
	fs2 := dataset.NewFileSet([]*dataset.File{
		dataset.NewFile(dataset.FileDesc{
			Path: fs.File(0).Path(), Native: dataset.Uint16, NumFrames: 5, SigShape: []int{4},
		}),
	})
	if err := fs2.OpenAll(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer fs2.CloseAll()
	view, _ := fs2.File(0).Frames()
	if !bytes.Equal(view.Frame(0), want[:8]) {
		t.Error("corrections leaked into the file data")
	}
}

func TestMMapCopyPathCustomDecoder(t *testing.T) {
	fs, want := buildDataset(t, t.TempDir(), []int{4}, dataset.Uint8, 8, 0, 0)
	xor := dataset.DecodeFunc(func(dst, src []byte) error {
		for i := range src {
			dst[i] = src[i] ^ 0xff
		}
		return nil
	})
	req := &ReadRequest{
		Scheme:  &dataset.TilingScheme{Depth: 2, Shape: []int{8}},
		FileSet: fs,
		Ranges:  tileRanges(fs, 2),
		Native:  dataset.Uint8,
		Read:    dataset.Uint8,
		Decoder: xor,
	}
	if !NeedCopy(req) {
		t.Fatal("decoder must force the copy path")
	}
	it, err := NewMMapBackend(MMapConfig{}).GetTiles(req)
	if err != nil {
		t.Fatalf("get tiles: %v", err)
	}
	defer it.Close()

	got := collect(t, it)
	if len(got) != len(want) {
		t.Fatalf("got %d bytes want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i]^0xff {
			t.Fatalf("byte %d not decoded", i)
		}
	}
}

func TestMMapDecoderErrorPropagates(t *testing.T) {
	fs, _ := buildDataset(t, t.TempDir(), []int{4}, dataset.Uint8, 8, 0, 0)
	boom := errors.New("bad frame")
	req := &ReadRequest{
		Scheme:  &dataset.TilingScheme{Depth: 2, Shape: []int{8}},
		FileSet: fs,
		Ranges:  tileRanges(fs, 2),
		Native:  dataset.Uint8,
		Read:    dataset.Uint8,
		Decoder: dataset.DecodeFunc(func(dst, src []byte) error { return boom }),
	}
	it, err := NewMMapBackend(MMapConfig{}).GetTiles(req)
	if err != nil {
		t.Fatalf("get tiles: %v", err)
	}
	if it.Next() {
		t.Fatal("Next succeeded past a decoder failure")
	}
	if !errors.Is(it.Err(), boom) {
		t.Fatalf("Err: got %v want the decoder error", it.Err())
	}
	// the failure released the fileset
	if _, err := fs.File(0).Frames(); !errors.Is(err, dataset.ErrFileClosed) {
		t.Errorf("file left open after error: %v", err)
	}
}

func TestIteratorEarlyClose(t *testing.T) {
	fs, _ := buildDataset(t, t.TempDir(), []int{5, 5}, dataset.Uint16, 4, 0, 0)
	req := &ReadRequest{
		Scheme:  &dataset.TilingScheme{Depth: 3, Shape: []int{4}},
		FileSet: fs,
		Ranges:  tileRanges(fs, 3),
		Native:  dataset.Uint16,
		Read:    dataset.Uint16,
	}
	it, err := NewMMapBackend(MMapConfig{}).GetTiles(req)
	if err != nil {
		t.Fatalf("get tiles: %v", err)
	}
	if !it.Next() {
		t.Fatalf("first Next failed: %v", it.Err())
	}
	if err := it.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// abandoning the iteration left no open mappings
	for i := 0; i < fs.Len(); i++ {
		if _, err := fs.File(i).Frames(); !errors.Is(err, dataset.ErrFileClosed) {
			t.Errorf("file %d left open after early close: %v", i, err)
		}
	}
	if it.Next() {
		t.Error("Next produced a tile after Close")
	}
	if it.Tile() != nil {
		t.Error("Tile non-nil after Close")
	}
	if err := it.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
