package backend

import (
	"log/slog"

	"github.com/ic-timon/tileio/dataset"
)

// DefaultMaxIOSize is the default copy-path transfer size: 1 MiB blocks.
const DefaultMaxIOSize = 1 << 20

// ReadRequest bundles the parameters of one tile-read operation, usually
// one partition of a dataset.
type ReadRequest struct {
	Scheme      *dataset.TilingScheme
	FileSet     *dataset.FileSet
	Ranges      []dataset.ReadRange
	ROI         *dataset.ROI          // nil means all frames
	Native      dataset.DType         // on-disk element type
	Read        dataset.DType         // element type handed to the consumer
	Decoder     dataset.Decoder       // nil means no custom decoding
	Corrections dataset.CorrectionSet // nil means no corrections
	SyncOffset  int                   // shift between logical and physical frame indices
}

// Backend is an I/O strategy producing tiles for read requests. A Backend
// is stateless with respect to requests and safe to share across
// concurrently running tasks.
type Backend interface {
	// MaxIOSize returns the transfer size used to batch copy-path reads.
	MaxIOSize() int
	// GetTiles opens the request's fileset and returns a one-shot,
	// pull-based tile iterator over the read ranges, in range order.
	GetTiles(req *ReadRequest) (*TileIterator, error)
}

// NeedCopy reports whether tiles for the request must be materialized
// through the read+decode path. When it returns false the dataset can be
// served as views straight into the underlying mappings. Five independent
// conditions each force a copy; they are checked cheapest first but the
// result is their plain disjunction.
func NeedCopy(req *ReadRequest) bool {
	// 1) a roi leaves gaps on the navigation axis that a single linear
	// view cannot represent
	if req.ROI != nil {
		slog.Debug("have roi, need copy")
		return true
	}
	// 2) decoding or dtype conversion means the bytes handed out are not
	// the bytes on disk
	if NeedDecode(req.Decoder, req.Native, req.Read) {
		slog.Debug("have decode, need copy")
		return true
	}
	// 3) a tile deeper than the smallest file could span a file boundary,
	// which a per-file view cannot satisfy; without both a scheme and a
	// fileset this condition simply does not trigger
	if req.Scheme != nil && req.FileSet != nil {
		if req.FileSet.MinFramesPerFile() < req.Scheme.Depth {
			slog.Debug("tile depth exceeds smallest file, need copy")
			return true
		}
	}
	// 4) corrections mutate values; a read-only view cannot
	if req.Corrections != nil && req.Corrections.HaveCorrections() {
		slog.Debug("have corrections, need copy")
		return true
	}
	// 5) a negative sync offset reorders frames
	if req.SyncOffset < 0 {
		slog.Debug("negative sync offset, need copy")
		return true
	}
	return false
}

// NeedDecode reports whether reading requires a value transformation:
// the native type differs from the read type, or a decoder is configured.
func NeedDecode(decoder dataset.Decoder, native, read dataset.DType) bool {
	if native != read {
		return true
	}
	return decoder != nil
}

// ApplyCorrections applies corrections to data in place, restricted to
// region. No-op when corrections is nil; an empty correction set leaves
// data unchanged per the CorrectionSet contract. This is the only place in
// this module that mutates previously read data.
func ApplyCorrections(data []byte, dt dataset.DType, region dataset.Slice, corrections dataset.CorrectionSet) {
	if corrections == nil {
		return
	}
	corrections.Apply(data, dt, region)
}

// Base carries the shared strategy defaults. Concrete backends embed it
// and override what they need; the GetTiles here fails with
// ErrNotImplemented so an incomplete backend surfaces as a contract
// violation, not a runtime condition.
type Base struct{}

// MaxIOSize returns DefaultMaxIOSize.
func (Base) MaxIOSize() int { return DefaultMaxIOSize }

// GetTiles must be supplied by each concrete backend.
func (Base) GetTiles(*ReadRequest) (*TileIterator, error) {
	return nil, ErrNotImplemented
}
