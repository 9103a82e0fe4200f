package battlepack

import (
	"bytes"
	"io"
	"testing"
)

func TestFindSignaturePositions(t *testing.T) {
	sig := []byte{0x44, 0x71, 0x00}
	tests := []struct {
		name      string
		size      int
		pos       int
		chunkSize int
	}{
		{name: "at start", size: 256, pos: 0, chunkSize: 64},
		{name: "mid buffer", size: 256, pos: 100, chunkSize: 64},
		{name: "at end", size: 256, pos: 253, chunkSize: 64},
		{name: "straddles chunk boundary", size: 256, pos: 63, chunkSize: 64},
		{name: "last byte of chunk starts match", size: 256, pos: 127, chunkSize: 64},
		{name: "chunk smaller than signature", size: 64, pos: 30, chunkSize: 2},
		{name: "single chunk holds everything", size: 32, pos: 10, chunkSize: 1024},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := bytes.Repeat([]byte{0xAA}, tc.size)
			copy(data[tc.pos:], sig)
			got, found, err := findSignature(bytes.NewReader(data), sig, tc.chunkSize)
			if err != nil {
				t.Fatalf("findSignature returned error: %v", err)
			}
			if !found {
				t.Fatalf("signature at %d not found", tc.pos)
			}
			if got != int64(tc.pos) {
				t.Fatalf("offset = %d, want %d", got, tc.pos)
			}
		})
	}
}

func TestFindSignatureNotFound(t *testing.T) {
	sig := []byte{0x44, 0x71, 0x00}
	// Repeated near-misses: the prefix appears but never the full sequence.
	data := bytes.Repeat([]byte{0x44, 0x71, 0x01}, 100)
	off, found, err := findSignature(bytes.NewReader(data), sig, 16)
	if err != nil {
		t.Fatalf("findSignature returned error: %v", err)
	}
	if found {
		t.Fatalf("unexpected match at offset %d", off)
	}
}

func TestFindSignatureEmptyInput(t *testing.T) {
	_, found, err := findSignature(bytes.NewReader(nil), []byte{0x44}, 16)
	if err != nil {
		t.Fatalf("findSignature returned error: %v", err)
	}
	if found {
		t.Fatal("found a signature in empty input")
	}
}

func TestFindSignatureEmptySignature(t *testing.T) {
	if _, _, err := findSignature(bytes.NewReader([]byte{1, 2, 3}), nil, 16); err == nil {
		t.Fatal("expected error for empty signature")
	}
}

func TestFindSignatureRewinds(t *testing.T) {
	sig := []byte{0x44, 0x71, 0x00}
	data := bytes.Repeat([]byte{0xAA}, 64)
	copy(data[5:], sig)
	r := bytes.NewReader(data)
	// Leave the reader mid-stream; FindSignature must still scan from 0.
	if _, err := r.Seek(40, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}
	got, found, err := FindSignature(r, sig)
	if err != nil {
		t.Fatalf("FindSignature returned error: %v", err)
	}
	if !found || got != 5 {
		t.Fatalf("offset = %d found = %v, want 5 true", got, found)
	}
}
