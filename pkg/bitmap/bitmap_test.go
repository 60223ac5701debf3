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

package bitmap

import (
	"errors"
	"testing"
)

func TestFindFree(t *testing.T) {
	testCases := []struct {
		bitmap    Bitmap
		maxBits   uint32
		expected  uint32
		expectErr bool
	}{
		{Bitmap{0x00}, 8, 0, false},
		{Bitmap{0x01}, 8, 1, false},
		{Bitmap{0x03}, 8, 2, false},
		{Bitmap{0xFF, 0x00}, 16, 8, false},
		{Bitmap{0xFF, 0xFE}, 16, 8, false},
		{Bitmap{0xFF, 0xFF}, 16, 0, true},
		{Bitmap{0xFF, 0x00}, 8, 0, true},
		{Bitmap{0x7F}, 7, 0, true},
		{Bitmap{0x7F}, 8, 7, false},
		{Bitmap{0x0F, 0x00}, 4, 0, true},
		{Bitmap{0xF7}, 8, 3, false},
		{Bitmap{0x00}, 0, 0, true},
		{Bitmap{0xFF}, 64, 0, true},
	}

	for i, testCase := range testCases {
		result, err := testCase.bitmap.FindFree(testCase.maxBits)
		if testCase.expectErr {
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("case %v: expected ErrNotFound, got: %v (%v)", i+1, err, result)
			}
			continue
		}
		if err != nil {
			t.Fatalf("case %v: unexpected error: %v", i+1, err)
		}
		if result != testCase.expected {
			t.Fatalf("case %v: expected: %v, got: %v", i+1, testCase.expected, result)
		}
	}
}

func TestSetAndFindFree(t *testing.T) {
	b := make(Bitmap, 4096)
	const maxBits = 100
	for want := uint32(0); want < maxBits; want++ {
		got, err := b.FindFree(maxBits)
		if err != nil {
			t.Fatalf("bit %v: %v", want, err)
		}
		if got != want {
			t.Fatalf("expected: %v, got: %v", want, got)
		}
		b.Set(got)
	}

	if _, err := b.FindFree(maxBits); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}

	if b.IsSet(maxBits) {
		t.Fatalf("padding bit %v must stay clear", maxBits)
	}

	if count := b.Count(4096 * 8); count != maxBits {
		t.Fatalf("expected %v set bits, got: %v", maxBits, count)
	}
}

func TestSetLSBFirst(t *testing.T) {
	b := make(Bitmap, 2)
	b.Set(0)
	b.Set(9)
	if b[0] != 0x01 || b[1] != 0x02 {
		t.Fatalf("unexpected layout %#x %#x", b[0], b[1])
	}
	if !b.IsSet(0) || !b.IsSet(9) || b.IsSet(1) {
		t.Fatalf("IsSet disagrees with Set")
	}
	if b.IsSet(1000) {
		t.Fatalf("out of range bit must report clear")
	}
}

func TestFirstSetFrom(t *testing.T) {
	b := Bitmap{0x01, 0x80}
	if index, found := b.FirstSetFrom(0); !found || index != 0 {
		t.Fatalf("expected 0, got: %v %v", index, found)
	}
	if index, found := b.FirstSetFrom(1); !found || index != 15 {
		t.Fatalf("expected 15, got: %v %v", index, found)
	}
	if _, found := b.FirstSetFrom(16); found {
		t.Fatalf("expected no set bit")
	}
}

func TestClone(t *testing.T) {
	b := Bitmap{0x01}
	c := b.Clone()
	c.Set(1)
	if b[0] != 0x01 {
		t.Fatalf("clone shares storage with original")
	}
	if c[0] != 0x03 {
		t.Fatalf("expected 0x03, got: %#x", c[0])
	}
}
