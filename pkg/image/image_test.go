// This file is part of MinIO
// Copyright (c) 2026 MinIO, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package image

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/minio/minivsfs/pkg/checksum"
	fserrors "github.com/minio/minivsfs/pkg/fs/errors"
	"github.com/minio/minivsfs/pkg/layout"
	"github.com/minio/minivsfs/pkg/mkfs"
	"github.com/minio/minivsfs/pkg/volume"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
)

var (
	buildTime  = time.Unix(1700000000, 0)
	injectTime = time.Unix(1700000100, 0)
)

func newTestImage(t *testing.T, sizeKiB, inodes uint32) *Image {
	t.Helper()

	l, err := layout.Calculate(sizeKiB, inodes)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := mkfs.Build(&buf, l, buildTime); err != nil {
		t.Fatal(err)
	}
	img, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func reload(t *testing.T, img *Image) *Image {
	t.Helper()

	var buf bytes.Buffer
	n, err := img.WriteTo(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != img.SuperBlock.ImageSize() {
		t.Fatalf("written %v bytes; expected %v", n, img.SuperBlock.ImageSize())
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	return loaded
}

type snapshot struct {
	inodeBitmap []byte
	dataBitmap  []byte
	inodeTable  []byte
	dataRegion  []byte
	superBlock  volume.SuperBlock
}

func takeSnapshot(img *Image) snapshot {
	return snapshot{
		inodeBitmap: append([]byte{}, img.InodeBitmap...),
		dataBitmap:  append([]byte{}, img.DataBitmap...),
		inodeTable:  append([]byte{}, img.InodeTable...),
		dataRegion:  append([]byte{}, img.DataRegion...),
		superBlock:  *img.SuperBlock,
	}
}

func assertUnchanged(t *testing.T, before snapshot, img *Image) {
	t.Helper()

	assert.Equal(t, before.inodeBitmap, []byte(img.InodeBitmap), "inode bitmap changed")
	assert.Equal(t, before.dataBitmap, []byte(img.DataBitmap), "data bitmap changed")
	assert.True(t, bytes.Equal(before.inodeTable, img.InodeTable), "inode table changed")
	assert.True(t, bytes.Equal(before.dataRegion, img.DataRegion), "data region changed")
	assert.Equal(t, before.superBlock, *img.SuperBlock, "superblock changed")
}

func TestInjectHello(t *testing.T) {
	img := newTestImage(t, 180, 128)

	result, err := img.Inject("hello.txt", []byte("hello mvsf"), injectTime)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint32(2), result.Inode)
	assert.Equal(t, []uint32{8}, result.Blocks)
	assert.Equal(t, 2, result.Slot)
	assert.Equal(t, uint64(10), result.Size)

	img = reload(t, img)

	entries, err := img.List()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, []Entry{
		{Slot: 0, Inode: 1, Type: "dir", Name: ".", Size: 3 * volume.DirEntrySize},
		{Slot: 1, Inode: 1, Type: "dir", Name: "..", Size: 3 * volume.DirEntrySize},
		{Slot: 2, Inode: 2, Type: "file", Name: "hello.txt", Size: 10},
	}, entries)

	inode, err := img.Inode(2)
	if err != nil {
		t.Fatal(err)
	}
	if !inode.IsRegular() || inode.Links != 1 || inode.SizeBytes != 10 || len(inode.Blocks()) != 1 {
		t.Fatalf("unexpected inode %+v", inode)
	}
	if inode.Atime != uint64(injectTime.Unix()) || inode.Mtime != inode.Atime || inode.Ctime != inode.Atime {
		t.Fatalf("unexpected timestamps %+v", inode)
	}
	if uint64(checksum.CRC32(inode.Marshal()[:120])) != inode.CRC {
		t.Fatalf("inode checksum does not match a fresh computation")
	}

	block, err := img.Block(inode.Direct[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(block[:10], []byte("hello mvsf")) || !bytes.Equal(block[10:], make([]byte, volume.BlockSize-10)) {
		t.Fatalf("unexpected data block content")
	}

	root, err := img.Inode(volume.RootInode)
	if err != nil {
		t.Fatal(err)
	}
	if root.Links != 3 || root.SizeBytes != 3*volume.DirEntrySize || root.Mtime != uint64(injectTime.Unix()) || !root.Valid() {
		t.Fatalf("unexpected root inode %+v", root)
	}

	sb := img.SuperBlock
	if sb.MtimeEpoch != uint64(injectTime.Unix()) || !sb.Valid() {
		t.Fatalf("superblock must be touched and finalized")
	}

	if problems := img.Verify(); len(problems) != 0 {
		t.Fatalf("unexpected problems %v", problems)
	}
}

func TestInjectBlockBoundaries(t *testing.T) {
	testCases := []struct {
		size   int
		blocks int
	}{
		{1, 1},
		{volume.BlockSize - 1, 1},
		{volume.BlockSize, 1},
		{volume.BlockSize + 1, 2},
		{11*volume.BlockSize + 1, 12},
		{12 * volume.BlockSize, 12},
	}

	for i, testCase := range testCases {
		img := newTestImage(t, 180, 128)
		usedBefore := img.Stats().UsedDataBlocks

		data := bytes.Repeat([]byte{'x'}, testCase.size)
		result, err := img.Inject("file", data, injectTime)
		if err != nil {
			t.Fatalf("case %v: %v", i+1, err)
		}
		if len(result.Blocks) != testCase.blocks {
			t.Fatalf("case %v: blocks: expected: %v, got: %v", i+1, testCase.blocks, len(result.Blocks))
		}
		if used := img.Stats().UsedDataBlocks - usedBefore; used != uint64(testCase.blocks) {
			t.Fatalf("case %v: bitmap blocks: expected: %v, got: %v", i+1, testCase.blocks, used)
		}
		for j := 1; j < len(result.Blocks); j++ {
			if result.Blocks[j] != result.Blocks[j-1]+1 {
				t.Fatalf("case %v: first-fit must allocate consecutive blocks on a fresh volume; got %v", i+1, result.Blocks)
			}
		}

		inode, err := img.Inode(result.Inode)
		if err != nil {
			t.Fatalf("case %v: %v", i+1, err)
		}
		for j := testCase.blocks; j < volume.DirectMax; j++ {
			if inode.Direct[j] != 0 {
				t.Fatalf("case %v: direct[%v] must be zero", i+1, j)
			}
		}

		var content []byte
		for _, number := range result.Blocks {
			block, err := img.Block(number)
			if err != nil {
				t.Fatalf("case %v: %v", i+1, err)
			}
			content = append(content, block...)
		}
		if !bytes.Equal(content[:testCase.size], data) {
			t.Fatalf("case %v: content mismatch", i+1)
		}
		if !bytes.Equal(content[testCase.size:], make([]byte, len(content)-testCase.size)) {
			t.Fatalf("case %v: final block is not zero padded", i+1)
		}
	}
}

func TestInjectValidation(t *testing.T) {
	testCases := []struct {
		name        string
		size        int
		expectedErr error
	}{
		{"empty", 0, fserrors.ErrEmptyFile},
		{"big", 12*volume.BlockSize + 1, fserrors.ErrFileTooLarge},
		{"bigger", 13 * volume.BlockSize, fserrors.ErrFileTooLarge},
		{strings.Repeat("n", volume.MaxNameLen+1), 1, fserrors.ErrNameTooLong},
		{"", 1, fserrors.ErrInvalidName},
		{".", 1, fserrors.ErrInvalidName},
		{"..", 1, fserrors.ErrInvalidName},
		{"a\x00b", 1, fserrors.ErrInvalidName},
	}

	for i, testCase := range testCases {
		img := newTestImage(t, 180, 128)
		before := takeSnapshot(img)

		_, err := img.Inject(testCase.name, make([]byte, testCase.size), injectTime)
		if !errors.Is(err, testCase.expectedErr) {
			t.Fatalf("case %v: expected: %v, got: %v", i+1, testCase.expectedErr, err)
		}
		if !errors.Is(err, fserrors.ErrValidation) {
			t.Fatalf("case %v: expected validation error, got: %v", i+1, err)
		}
		assertUnchanged(t, before, img)
	}

	img := newTestImage(t, 180, 128)
	if _, err := img.Inject(strings.Repeat("n", volume.MaxNameLen), []byte("x"), injectTime); err != nil {
		t.Fatalf("name of %v bytes must be accepted: %v", volume.MaxNameLen, err)
	}
}

func TestInjectDataExhaustion(t *testing.T) {
	// 38 data blocks, one taken by the root directory.
	img := newTestImage(t, 180, 128)
	data := make([]byte, 12*volume.BlockSize)

	injected := 0
	var err error
	var before snapshot
	for {
		before = takeSnapshot(img)
		if _, err = img.Inject(fmt.Sprintf("file%v", injected), data, injectTime); err != nil {
			break
		}
		injected++
	}

	if injected != 3 {
		t.Fatalf("expected 3 successful injections, got: %v", injected)
	}
	if !errors.Is(err, fserrors.ErrNoFreeDataBlock) || !errors.Is(err, fserrors.ErrCapacity) {
		t.Fatalf("expected ErrNoFreeDataBlock, got: %v", err)
	}
	assertUnchanged(t, before, img)

	// one block is still free
	if _, err := img.Inject("last", []byte("x"), injectTime); err != nil {
		t.Fatal(err)
	}
	if _, err := img.Inject("none", []byte("x"), injectTime); !errors.Is(err, fserrors.ErrNoFreeDataBlock) {
		t.Fatalf("expected ErrNoFreeDataBlock, got: %v", err)
	}
	if problems := img.Verify(); len(problems) != 0 {
		t.Fatalf("unexpected problems %v", problems)
	}
}

func TestInjectInodeExhaustion(t *testing.T) {
	img := newTestImage(t, 4096, 128)
	for bit := uint32(0); bit < 128; bit++ {
		img.InodeBitmap.Set(bit)
	}
	before := takeSnapshot(img)

	_, err := img.Inject("file", []byte("x"), injectTime)
	if !errors.Is(err, fserrors.ErrNoFreeInode) || !errors.Is(err, fserrors.ErrCapacity) {
		t.Fatalf("expected ErrNoFreeInode, got: %v", err)
	}
	assertUnchanged(t, before, img)
}

func TestInjectDirectoryFull(t *testing.T) {
	img := newTestImage(t, 4096, 512)
	capacity := volume.DirEntriesPerBlock - 2
	for i := 0; i < capacity; i++ {
		if _, err := img.Inject(fmt.Sprintf("file%v", i), []byte{byte(i)}, injectTime); err != nil {
			t.Fatalf("file %v: %v", i, err)
		}
	}

	before := takeSnapshot(img)
	_, err := img.Inject("overflow", []byte("x"), injectTime)
	if !errors.Is(err, fserrors.ErrDirectoryFull) || !errors.Is(err, fserrors.ErrCapacity) {
		t.Fatalf("expected ErrDirectoryFull, got: %v", err)
	}
	assertUnchanged(t, before, img)

	entries, err := img.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != volume.DirEntriesPerBlock {
		t.Fatalf("expected %v entries, got: %v", volume.DirEntriesPerBlock, len(entries))
	}
	for i, entry := range entries[2:] {
		if entry.Name != fmt.Sprintf("file%v", i) || entry.Inode != uint32(i+2) {
			t.Fatalf("entry %v corrupted: %+v", i, entry)
		}
	}
	if problems := img.Verify(); len(problems) != 0 {
		t.Fatalf("unexpected problems %v", problems)
	}
}

func TestInjectReusesFreeSlot(t *testing.T) {
	img := newTestImage(t, 180, 128)
	if _, err := img.Inject("a", []byte("a"), injectTime); err != nil {
		t.Fatal(err)
	}
	if _, err := img.Inject("b", []byte("b"), injectTime); err != nil {
		t.Fatal(err)
	}

	block, err := img.RootDirBlock()
	if err != nil {
		t.Fatal(err)
	}
	copy(block[2*volume.DirEntrySize:3*volume.DirEntrySize], make([]byte, volume.DirEntrySize))

	result, err := img.Inject("c", []byte("c"), injectTime)
	if err != nil {
		t.Fatal(err)
	}
	if result.Slot != 2 {
		t.Fatalf("expected slot 2, got: %v", result.Slot)
	}
}

func TestInjectZeroesStaleBlock(t *testing.T) {
	img := newTestImage(t, 180, 128)
	stale, err := img.Block(uint32(img.SuperBlock.DataRegionStart) + 1)
	if err != nil {
		t.Fatal(err)
	}
	for i := range stale {
		stale[i] = 0xAA
	}

	result, err := img.Inject("small", []byte("abc"), injectTime)
	if err != nil {
		t.Fatal(err)
	}
	block, err := img.Block(result.Blocks[0])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(block[:3], []byte("abc")) || !bytes.Equal(block[3:], make([]byte, volume.BlockSize-3)) {
		t.Fatalf("allocated block must be zero beyond file content")
	}
}

func TestLoadErrors(t *testing.T) {
	img := newTestImage(t, 180, 128)
	var buf bytes.Buffer
	if _, err := img.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	badMagic := append([]byte{}, data...)
	badMagic[0] ^= 0xFF

	testCases := []struct {
		data        []byte
		expectedErr error
	}{
		{badMagic, fserrors.ErrBadMagic},
		{data[:volume.BlockSize], fserrors.ErrShortImage},
		{data[:len(data)-1], fserrors.ErrShortImage},
		{data[:10], fserrors.ErrIO},
		{nil, fserrors.ErrIO},
	}

	for i, testCase := range testCases {
		_, err := Load(bytes.NewReader(testCase.data))
		if !errors.Is(err, testCase.expectedErr) {
			t.Fatalf("case %v: expected: %v, got: %v", i+1, testCase.expectedErr, err)
		}
	}
}

func TestVerifyDetectsCorruption(t *testing.T) {
	testCases := []struct {
		corrupt func(img *Image)
		object  string
		err     error
	}{
		{func(img *Image) { img.SuperBlock.Flags = 1 }, "superblock", fserrors.ErrIntegrity},
		{func(img *Image) { img.InodeTable[volume.InodeSize+12] ^= 0xFF }, "inode 2", fserrors.ErrChecksumMismatch},
		{func(img *Image) {
			block, _ := img.RootDirBlock()
			block[2*volume.DirEntrySize+10] ^= 0xFF
		}, "dirent 2", fserrors.ErrChecksumMismatch},
		{func(img *Image) { img.InodeBitmap.Set(200) }, "inode bitmap", fserrors.ErrIntegrity},
		{func(img *Image) { img.DataBitmap.Set(1000) }, "data bitmap", fserrors.ErrIntegrity},
		{func(img *Image) {
			inode, _ := img.Inode(2)
			inode.Mode = 0o120000
			inode.Finalize()
			_ = volume.WriteInode(img.InodeTable, 2, inode)
		}, "inode 2", fserrors.ErrIntegrity},
	}

	for i, testCase := range testCases {
		img := newTestImage(t, 180, 128)
		if _, err := img.Inject("hello.txt", []byte("hello"), injectTime); err != nil {
			t.Fatalf("case %v: %v", i+1, err)
		}
		testCase.corrupt(img)

		problems := img.Verify()
		found := false
		for _, problem := range problems {
			if problem.Object == testCase.object && errors.Is(problem.Err, testCase.err) {
				found = true
			}
		}
		if !found {
			t.Fatalf("case %v: expected problem in %v, got: %v", i+1, testCase.object, problems)
		}
	}
}

func TestStats(t *testing.T) {
	img := newTestImage(t, 180, 128)
	stats := img.Stats()
	assert.Equal(t, uint64(1), stats.UsedInodes)
	assert.Equal(t, uint64(127), stats.FreeInodes())
	assert.Equal(t, uint64(1), stats.UsedDataBlocks)
	assert.Equal(t, uint64(37), stats.FreeDataBlocks())
	assert.Equal(t, uint64(2), stats.DirEntries)
	assert.Equal(t, uint64(62), stats.FreeDirSlots)

	if _, err := img.Inject("f", make([]byte, volume.BlockSize+1), injectTime); err != nil {
		t.Fatal(err)
	}
	stats = img.Stats()
	assert.Equal(t, uint64(2), stats.UsedInodes)
	assert.Equal(t, uint64(3), stats.UsedDataBlocks)
	assert.Equal(t, uint64(3), stats.DirEntries)
	assert.Equal(t, injectTime.UTC(), stats.ModTime)
}

func TestInjectFile(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "volume.img")
	if _, err := mkfs.BuildFile(imagePath, 180, 128, mkfs.Options{}); err != nil {
		t.Fatal(err)
	}

	hostFile := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(hostFile, []byte("hello mvsf"), 0o644); err != nil {
		t.Fatal(err)
	}
	otherFile := filepath.Join(dir, "other.bin")
	if err := os.WriteFile(otherFile, make([]byte, 5000), 0o644); err != nil {
		t.Fatal(err)
	}

	before, err := os.ReadFile(imagePath)
	if err != nil {
		t.Fatal(err)
	}

	outputPath := filepath.Join(dir, "output.img")
	result, err := InjectFile(imagePath, outputPath, hostFile, Options{Now: func() time.Time { return injectTime }})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "hello.txt", result.Name)
	assert.Equal(t, uint32(2), result.Inode)
	assert.Equal(t, digest.SHA256, result.Digest.Algorithm())
	assert.Equal(t, "15a1f78fd2a02cd7786feb9ea32fa1748b029f5929f493a430e0bf17fbffc800", result.Digest.Encoded())

	after, err := os.ReadFile(imagePath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("input image must not be modified")
	}

	// same input and output path
	result, err = InjectFile(outputPath, outputPath, otherFile, Options{Atomic: true})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint32(3), result.Inode)
	assert.Len(t, result.Blocks, 2)

	img, err := LoadFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := img.List()
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, entries, 4)
	assert.Equal(t, "other.bin", entries[3].Name)
	assert.Empty(t, img.Verify())

	if _, err := InjectFile(outputPath, outputPath, filepath.Join(dir, "missing"), Options{}); !errors.Is(err, fserrors.ErrIO) {
		t.Fatalf("expected I/O error, got: %v", err)
	}

	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := InjectFile(outputPath, outputPath, emptyFile, Options{}); !errors.Is(err, fserrors.ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got: %v", err)
	}
}

func TestDisplayName(t *testing.T) {
	testCases := []struct {
		path     string
		expected string
	}{
		{"hello.txt", "hello.txt"},
		{"/tmp/hello.txt", "hello.txt"},
		{"a/b/c", "c"},
		{"dir/", ""},
	}

	for i, testCase := range testCases {
		if result := DisplayName(testCase.path); result != testCase.expected {
			t.Fatalf("case %v: expected: %q, got: %q", i+1, testCase.expected, result)
		}
	}
}
