package battlepack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Battle pack container layout. The table encoding is a compatibility
// contract with the game engine and must not change:
//
//	uint32le  section count N
//	uint32le  offsets[N+1]   absolute file offsets; offsets[i] is the start
//	                         of section i, offsets[N] is the total file size
//	...       section data, contiguous, in index order
const (
	countFieldSize  = 4
	offsetFieldSize = 4
)

var (
	ErrBadSectionTable      = errors.New("malformed section table")
	ErrSectionOutOfRange    = errors.New("section index out of range")
	ErrSignatureNotFound    = errors.New("equipment signature not found")
	ErrSectionCountMismatch = errors.New("section count differs from declared count")
)

// tableSize returns the number of bytes the header and offset table occupy
// for a pack holding count sections.
func tableSize(count int) int64 {
	return countFieldSize + int64(count+1)*offsetFieldSize
}

type sectionEntry struct {
	offset int64
	length int64
}

type sectionTable struct {
	entries []sectionEntry
}

func (t *sectionTable) count() int {
	return len(t.entries)
}

// parseSectionTable reads and validates the header and offset table of a
// container of fileSize bytes.
func parseSectionTable(r io.ReaderAt, fileSize int64) (sectionTable, error) {
	var table sectionTable
	countBuf := make([]byte, countFieldSize)
	if _, err := r.ReadAt(countBuf, 0); err != nil {
		if errors.Is(err, io.EOF) {
			return table, fmt.Errorf("%w: file too small for count field", ErrBadSectionTable)
		}
		return table, err
	}
	count := int64(binary.LittleEndian.Uint32(countBuf))
	headerEnd := tableSize(int(count))
	if headerEnd > fileSize {
		return table, fmt.Errorf("%w: %d sections need a %d byte table but the file holds %d bytes", ErrBadSectionTable, count, headerEnd, fileSize)
	}

	offsetsBuf := make([]byte, (count+1)*offsetFieldSize)
	if _, err := r.ReadAt(offsetsBuf, countFieldSize); err != nil {
		if errors.Is(err, io.EOF) {
			return table, fmt.Errorf("%w: offset table truncated", ErrBadSectionTable)
		}
		return table, err
	}

	offsets := make([]int64, count+1)
	for i := range offsets {
		offsets[i] = int64(binary.LittleEndian.Uint32(offsetsBuf[i*offsetFieldSize:]))
	}
	if offsets[0] != headerEnd {
		return table, fmt.Errorf("%w: first section offset %d does not follow the table (expected %d)", ErrBadSectionTable, offsets[0], headerEnd)
	}
	for i := 0; i < int(count); i++ {
		if offsets[i+1] < offsets[i] {
			return table, fmt.Errorf("%w: offsets of sections %d and %d overlap", ErrBadSectionTable, i, i+1)
		}
	}
	if offsets[count] > fileSize {
		return table, fmt.Errorf("%w: table claims %d bytes but the file holds %d", ErrBadSectionTable, offsets[count], fileSize)
	}

	table.entries = make([]sectionEntry, count)
	for i := range table.entries {
		table.entries[i] = sectionEntry{
			offset: offsets[i],
			length: offsets[i+1] - offsets[i],
		}
	}
	return table, nil
}

// appendSectionTable serializes the header and offset table for the given
// section start offsets plus the total file size as the final entry.
func appendSectionTable(dst []byte, offsets []uint32, total uint32) []byte {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(offsets)))
	dst = append(dst, scratch[:]...)
	for _, off := range offsets {
		binary.LittleEndian.PutUint32(scratch[:], off)
		dst = append(dst, scratch[:]...)
	}
	binary.LittleEndian.PutUint32(scratch[:], total)
	return append(dst, scratch[:]...)
}
