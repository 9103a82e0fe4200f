package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/CerulanLumina/ff12tza-utils/internal/battlepack"
)

func writeTestPack(t *testing.T, path string, sections [][]byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create pack: %v", err)
	}
	w, err := battlepack.NewWriter(f, len(sections))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for i, data := range sections {
		if err := w.WriteSection(data); err != nil {
			t.Fatalf("WriteSection(%d): %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}

func TestCollectSectionFiles(t *testing.T) {
	dir := t.TempDir()
	touch := func(name string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte{0x00}, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	// Valid names, created out of order.
	touch("section_10.bin")
	touch("section_00.bin")
	touch("section_02.bin")
	// Decoys that must not pass the exact-name filter.
	touch("section_1.bin")   // index not zero-padded
	touch("section_-5.bin")  // signed index, right length
	touch("section_xx.bin")  // non-digit index
	touch("section_000.bin") // too long
	touch("notes.txt")
	touch("Section_03.bin") // wrong case prefix
	if err := os.MkdirAll(filepath.Join(dir, "section_04.bin"), 0o755); err != nil {
		t.Fatalf("mkdir decoy: %v", err)
	}

	got, err := collectSectionFiles(dir)
	if err != nil {
		t.Fatalf("collectSectionFiles: %v", err)
	}
	want := []string{"section_00.bin", "section_02.bin", "section_10.bin"}
	if len(got) != len(want) {
		t.Fatalf("collected %d files %v, want %v", len(got), got, want)
	}
	for i, path := range got {
		if filepath.Base(path) != want[i] {
			t.Fatalf("collected[%d] = %s, want %s", i, filepath.Base(path), want[i])
		}
	}
}

func TestUnpackRepackByteIdentity(t *testing.T) {
	root := t.TempDir()
	packPath := filepath.Join(root, "battle_pack.bin")
	sections := [][]byte{
		bytes.Repeat([]byte{0x42}, 10),
		nil,
		bytes.Repeat([]byte{0x9C}, 256),
	}
	writeTestPack(t, packPath, sections)

	unpackCmd([]string{"--in", packPath})

	unpackedDir := packPath + ".unpacked"
	for i, want := range sections {
		data, err := os.ReadFile(filepath.Join(unpackedDir, sectionFileName(i)))
		if err != nil {
			t.Fatalf("read %s: %v", sectionFileName(i), err)
		}
		if !bytes.Equal(data, want) {
			t.Fatalf("section file %d differs from pack contents", i)
		}
	}

	repackedPath := filepath.Join(root, "repacked.bin")
	repackCmd([]string{"--in", unpackedDir, "--out", repackedPath})

	original, err := os.ReadFile(packPath)
	if err != nil {
		t.Fatalf("read original pack: %v", err)
	}
	repacked, err := os.ReadFile(repackedPath)
	if err != nil {
		t.Fatalf("read repacked pack: %v", err)
	}
	if !bytes.Equal(original, repacked) {
		t.Fatalf("repacked pack differs from original (%d vs %d bytes)", len(repacked), len(original))
	}
}

func TestSectionFileName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{index: 0, want: "section_00.bin"},
		{index: 7, want: "section_07.bin"},
		{index: 38, want: "section_38.bin"},
	}
	for _, tc := range tests {
		if got := sectionFileName(tc.index); got != tc.want {
			t.Fatalf("sectionFileName(%d) = %q, want %q", tc.index, got, tc.want)
		}
	}
}
