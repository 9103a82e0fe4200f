package battlepack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writePack(t *testing.T, sections [][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "battle_pack.bin")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create pack: %v", err)
	}
	w, err := NewWriter(f, len(sections))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for i, data := range sections {
		if err := w.WriteSection(data); err != nil {
			t.Fatalf("WriteSection(%d): %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestPackRoundTrip(t *testing.T) {
	sections := [][]byte{
		bytes.Repeat([]byte{0x11}, 10),
		nil, // empty sections are legal and must survive the trip
		bytes.Repeat([]byte{0x33}, 256),
		{0xDE, 0xAD, 0xBE, 0xEF},
	}
	path := writePack(t, sections)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	if got := r.SectionCount(); got != len(sections) {
		t.Fatalf("SectionCount = %d, want %d", got, len(sections))
	}
	for i, want := range sections {
		size, err := r.SectionSize(i)
		if err != nil {
			t.Fatalf("SectionSize(%d): %v", i, err)
		}
		if size != int64(len(want)) {
			t.Fatalf("SectionSize(%d) = %d, want %d", i, size, len(want))
		}
	}

	// Extract out of order, and one section twice: the reader promises
	// order-independent, repeatable access.
	for _, i := range []int{3, 0, 2, 1, 2} {
		var buf bytes.Buffer
		n, err := r.ExtractSection(i, &buf)
		if err != nil {
			t.Fatalf("ExtractSection(%d): %v", i, err)
		}
		if n != int64(len(sections[i])) {
			t.Fatalf("ExtractSection(%d) wrote %d bytes, want %d", i, n, len(sections[i]))
		}
		if !bytes.Equal(buf.Bytes(), sections[i]) {
			t.Fatalf("section %d contents differ after round trip", i)
		}
	}
}

func TestEmptyPackRoundTrip(t *testing.T) {
	path := writePack(t, nil)
	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()
	if got := r.SectionCount(); got != 0 {
		t.Fatalf("SectionCount = %d, want 0", got)
	}
}

func TestReaderSectionOutOfRange(t *testing.T) {
	path := writePack(t, [][]byte{{1, 2, 3}})
	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	for _, index := range []int{-1, 1, 99} {
		if _, err := r.SectionSize(index); !errors.Is(err, ErrSectionOutOfRange) {
			t.Fatalf("SectionSize(%d) error = %v, want ErrSectionOutOfRange", index, err)
		}
		var buf bytes.Buffer
		if _, err := r.ExtractSection(index, &buf); !errors.Is(err, ErrSectionOutOfRange) {
			t.Fatalf("ExtractSection(%d) error = %v, want ErrSectionOutOfRange", index, err)
		}
		if buf.Len() != 0 {
			t.Fatalf("ExtractSection(%d) wrote %d bytes on failure", index, buf.Len())
		}
	}
}

func TestWriterTooManySections(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "pack.bin"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	w, err := NewWriter(f, 1)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteSection([]byte{1}); err != nil {
		t.Fatalf("WriteSection: %v", err)
	}
	if err := w.WriteSection([]byte{2}); !errors.Is(err, ErrSectionCountMismatch) {
		t.Fatalf("extra WriteSection error = %v, want ErrSectionCountMismatch", err)
	}
}

func TestWriterTooFewSections(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "pack.bin"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	w, err := NewWriter(f, 2)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.WriteSection([]byte{1}); err != nil {
		t.Fatalf("WriteSection: %v", err)
	}
	if err := w.Close(); !errors.Is(err, ErrSectionCountMismatch) {
		t.Fatalf("Close error = %v, want ErrSectionCountMismatch", err)
	}
}

func TestParseSectionTableMalformed(t *testing.T) {
	u32 := func(vals ...uint32) []byte {
		var out []byte
		var scratch [4]byte
		for _, v := range vals {
			binary.LittleEndian.PutUint32(scratch[:], v)
			out = append(out, scratch[:]...)
		}
		return out
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty file", data: nil},
		{name: "count only", data: u32(1)},
		{name: "table larger than file", data: u32(1000, 12)},
		{name: "first offset before table end", data: append(u32(1, 8, 13), 0xAA)},
		{name: "first offset past table end", data: append(u32(1, 16, 17), 0xAA)},
		{name: "decreasing offsets", data: append(u32(2, 16, 20, 18), bytes.Repeat([]byte{0xAA}, 8)...)},
		{name: "total past end of file", data: u32(1, 12, 500)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseSectionTable(bytes.NewReader(tc.data), int64(len(tc.data)))
			if !errors.Is(err, ErrBadSectionTable) {
				t.Fatalf("parseSectionTable error = %v, want ErrBadSectionTable", err)
			}
		})
	}
}

func TestParseSectionTableAcceptsWriterOutput(t *testing.T) {
	data := appendSectionTable(nil, []uint32{12, 17}, 20)
	data = append(data, bytes.Repeat([]byte{0xAA}, 8)...)
	table, err := parseSectionTable(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("parseSectionTable: %v", err)
	}
	if table.count() != 2 {
		t.Fatalf("count = %d, want 2", table.count())
	}
	want := []sectionEntry{{offset: 12, length: 5}, {offset: 17, length: 3}}
	for i, entry := range table.entries {
		if entry != want[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, entry, want[i])
		}
	}
}

func TestTruncatedSectionReported(t *testing.T) {
	// A table that claims more data than the file holds must surface as a
	// format error on extraction, not a short read.
	path := writePack(t, [][]byte{bytes.Repeat([]byte{0x55}, 64)})
	if err := os.Truncate(path, 40); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	_, err := NewReader(path)
	if !errors.Is(err, ErrBadSectionTable) {
		t.Fatalf("NewReader on truncated pack error = %v, want ErrBadSectionTable", err)
	}
}
