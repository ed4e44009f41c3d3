package backend

import (
	"errors"
	"testing"
)

func TestFromRecord(t *testing.T) {
	b, err := FromRecord(map[string]any{"id": "mmap", "readahead": true})
	if err != nil {
		t.Fatalf("mmap record: %v", err)
	}
	if _, ok := b.(*MMapBackend); !ok {
		t.Fatalf("mmap record built %T", b)
	}

	b, err = FromRecord(map[string]any{"id": "buffered", "max_io_size": 4096})
	if err != nil {
		t.Fatalf("buffered record: %v", err)
	}
	if got := b.MaxIOSize(); got != 4096 {
		t.Errorf("max_io_size not applied: got %d want 4096", got)
	}
}

func TestFromRecordUnknownBackend(t *testing.T) {
	_, err := FromRecord(map[string]any{"id": "direct"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("got %v, want ErrUnknownBackend", err)
	}
}

func TestFromRecordMissingID(t *testing.T) {
	if _, err := FromRecord(map[string]any{"readahead": true}); err == nil {
		t.Fatal("record without id accepted")
	}
	if _, err := FromRecord(map[string]any{"id": 7}); err == nil {
		t.Fatal("record with non-string id accepted")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("duplicate registration did not panic")
		}
	}()
	Register("mmap", func(map[string]any) (Backend, error) { return nil, nil })
}
