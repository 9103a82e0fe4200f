package battlepack

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Reader provides random access to the sections of a battle pack. The
// section table is parsed once when the pack is opened; every extraction
// seeks to the section's recorded offset, so sections may be read in any
// order and more than once.
type Reader struct {
	file  *os.File
	size  int64
	table sectionTable
}

// NewReader opens the battle pack at path and parses its section table.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	table, err := parseSectionTable(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{file: f, size: info.Size(), table: table}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// SectionCount returns the number of sections declared by the table.
func (r *Reader) SectionCount() int {
	return r.table.count()
}

// SectionSize returns the byte length of section index without reading it.
func (r *Reader) SectionSize(index int) (int64, error) {
	if index < 0 || index >= r.table.count() {
		return 0, fmt.Errorf("%w: %d of %d", ErrSectionOutOfRange, index, r.table.count())
	}
	return r.table.entries[index].length, nil
}

// ExtractSection streams the full contents of section index into w and
// returns the number of bytes written. A section that cannot be read to its
// declared length is reported as an error, never silently shortened.
func (r *Reader) ExtractSection(index int, w io.Writer) (int64, error) {
	if r.file == nil {
		return 0, os.ErrClosed
	}
	if index < 0 || index >= r.table.count() {
		return 0, fmt.Errorf("%w: %d of %d", ErrSectionOutOfRange, index, r.table.count())
	}
	entry := r.table.entries[index]
	src := io.NewSectionReader(r.file, entry.offset, entry.length)
	n, err := io.Copy(w, src)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return n, fmt.Errorf("%w: section %d truncated after %d of %d bytes", ErrBadSectionTable, index, n, entry.length)
		}
		return n, err
	}
	if n != entry.length {
		return n, fmt.Errorf("%w: section %d truncated after %d of %d bytes", ErrBadSectionTable, index, n, entry.length)
	}
	return n, nil
}
