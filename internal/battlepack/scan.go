package battlepack

import (
	"bytes"
	"errors"
	"io"
)

const scanChunkSize = 64 * 1024

// FindSignature reports the offset, from the start of r, of the first
// occurrence of signature. The boolean result distinguishes "not found"
// from an I/O failure; the reader's position is unspecified afterwards.
func FindSignature(r io.ReadSeeker, signature []byte) (int64, bool, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, false, err
	}
	return findSignature(r, signature, scanChunkSize)
}

// findSignature scans in chunks of chunkSize bytes, carrying the last
// len(signature)-1 bytes across chunk boundaries so matches that straddle
// a boundary are found at the same offset regardless of chunk size.
func findSignature(r io.Reader, signature []byte, chunkSize int) (int64, bool, error) {
	if len(signature) == 0 {
		return 0, false, errors.New("empty signature")
	}
	if chunkSize < len(signature) {
		chunkSize = len(signature)
	}
	var (
		window []byte
		base   int64 // file offset of window[0]
		chunk  = make([]byte, chunkSize)
	)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			window = append(window, chunk[:n]...)
			if idx := bytes.Index(window, signature); idx >= 0 {
				return base + int64(idx), true, nil
			}
			if keep := len(signature) - 1; len(window) > keep {
				base += int64(len(window) - keep)
				window = append(window[:0], window[len(window)-keep:]...)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, false, nil
			}
			return 0, false, err
		}
	}
}
