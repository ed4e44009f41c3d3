package backend

import (
	"fmt"

	"github.com/ic-timon/tileio/dataset"
)

// convert translates src elements of the native type into dst elements of
// the read type. When the types match it degrades to a straight copy. Used
// by the copy path when no external decoder is configured.
func convert(dst, src []byte, native, read dataset.DType) error {
	if native == read {
		if len(dst) != len(src) {
			return fmt.Errorf("backend: convert: dst %d bytes, src %d bytes", len(dst), len(src))
		}
		copy(dst, src)
		return nil
	}
	n := len(src) / native.Size()
	if len(dst) != n*read.Size() {
		return fmt.Errorf("backend: convert: dst holds %d bytes for %d %s elements", len(dst), n, read)
	}
	switch native {
	case dataset.Uint8:
		return castTo(dst, read, src)
	case dataset.Uint16:
		return castTo(dst, read, dataset.AsUint16(src))
	case dataset.Uint32:
		return castTo(dst, read, dataset.AsUint32(src))
	case dataset.Uint64:
		return castTo(dst, read, dataset.AsUint64(src))
	case dataset.Int8:
		return castTo(dst, read, dataset.AsInt8(src))
	case dataset.Int16:
		return castTo(dst, read, dataset.AsInt16(src))
	case dataset.Int32:
		return castTo(dst, read, dataset.AsInt32(src))
	case dataset.Int64:
		return castTo(dst, read, dataset.AsInt64(src))
	case dataset.Float32:
		return castTo(dst, read, dataset.AsFloat32(src))
	case dataset.Float64:
		return castTo(dst, read, dataset.AsFloat64(src))
	}
	return fmt.Errorf("backend: convert: unsupported native type %s", native)
}

type element interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

func castTo[S element](dst []byte, read dataset.DType, src []S) error {
	switch read {
	case dataset.Uint8:
		cast(dst, src)
	case dataset.Uint16:
		cast(dataset.AsUint16(dst), src)
	case dataset.Uint32:
		cast(dataset.AsUint32(dst), src)
	case dataset.Uint64:
		cast(dataset.AsUint64(dst), src)
	case dataset.Int8:
		cast(dataset.AsInt8(dst), src)
	case dataset.Int16:
		cast(dataset.AsInt16(dst), src)
	case dataset.Int32:
		cast(dataset.AsInt32(dst), src)
	case dataset.Int64:
		cast(dataset.AsInt64(dst), src)
	case dataset.Float32:
		cast(dataset.AsFloat32(dst), src)
	case dataset.Float64:
		cast(dataset.AsFloat64(dst), src)
	default:
		return fmt.Errorf("backend: convert: unsupported read type %s", read)
	}
	return nil
}

func cast[D, S element](dst []D, src []S) {
	for i, v := range src {
		dst[i] = D(v)
	}
}
