package battlepack

import (
	"fmt"
	"io"
	"math"
)

// Writer assembles a battle pack from section buffers supplied in index
// order. The section count is fixed at construction; Close verifies that
// exactly that many sections were written before it finalizes the table.
type Writer struct {
	dst      io.WriteSeeker
	declared int
	offsets  []uint32
	next     int64
	closed   bool
}

// NewWriter prepares a writer that will produce a pack with sectionCount
// sections. A placeholder table is written immediately so section data can
// stream straight to dst; Close seeks back and fills in the real offsets.
func NewWriter(dst io.WriteSeeker, sectionCount int) (*Writer, error) {
	if sectionCount < 0 {
		return nil, fmt.Errorf("negative section count %d", sectionCount)
	}
	headerEnd := tableSize(sectionCount)
	if _, err := dst.Write(make([]byte, headerEnd)); err != nil {
		return nil, err
	}
	return &Writer{
		dst:      dst,
		declared: sectionCount,
		offsets:  make([]uint32, 0, sectionCount),
		next:     headerEnd,
	}, nil
}

// WriteSection appends the next section's bytes. It must be called exactly
// once per declared section, in increasing index order.
func (w *Writer) WriteSection(data []byte) error {
	if w.closed {
		return fmt.Errorf("writer already closed")
	}
	if len(w.offsets) >= w.declared {
		return fmt.Errorf("%w: section %d written but only %d declared", ErrSectionCountMismatch, len(w.offsets), w.declared)
	}
	end := w.next + int64(len(data))
	if end > math.MaxUint32 {
		return fmt.Errorf("%w: pack exceeds the 4 GiB offset field limit", ErrBadSectionTable)
	}
	if _, err := w.dst.Write(data); err != nil {
		return err
	}
	w.offsets = append(w.offsets, uint32(w.next))
	w.next = end
	return nil
}

// Close finalizes the section table. The resulting container parses back to
// the declared count with byte-identical section contents.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if len(w.offsets) != w.declared {
		return fmt.Errorf("%w: wrote %d of %d sections", ErrSectionCountMismatch, len(w.offsets), w.declared)
	}
	if _, err := w.dst.Seek(0, io.SeekStart); err != nil {
		return err
	}
	table := appendSectionTable(make([]byte, 0, tableSize(w.declared)), w.offsets, uint32(w.next))
	if _, err := w.dst.Write(table); err != nil {
		return err
	}
	_, err := w.dst.Seek(0, io.SeekEnd)
	return err
}
