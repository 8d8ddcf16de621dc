package hash

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestFull_Deterministic(t *testing.T) {
	data := []byte("the same bytes every time")

	h1, err := Full(bytes.NewReader(data), 8)
	if err != nil {
		t.Fatalf("Full() error = %v", err)
	}
	h2, err := Full(bytes.NewReader(data), 8)
	if err != nil {
		t.Fatalf("Full() error = %v", err)
	}

	if h1 != h2 {
		t.Errorf("Full() not deterministic: %x != %x", h1, h2)
	}
}

func TestFull_BufferSizeIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	data := make([]byte, 300*1024)
	rng.Read(data)

	var digests []uint64
	for _, bufSize := range []int{1, 7, 4096, 1 << 20} {
		h, err := Full(bytes.NewReader(data), bufSize)
		if err != nil {
			t.Fatalf("Full(bufSize=%d) error = %v", bufSize, err)
		}
		digests = append(digests, h)
	}

	for i := 1; i < len(digests); i++ {
		if digests[i] != digests[0] {
			t.Errorf("digest depends on buffer size: %x != %x", digests[i], digests[0])
		}
	}
}

func TestFull_OrderSensitive(t *testing.T) {
	h1, _ := Full(bytes.NewReader([]byte("ab")), 16)
	h2, _ := Full(bytes.NewReader([]byte("ba")), 16)

	if h1 == h2 {
		t.Error("Full() ignored byte order")
	}
}

func TestFingerprint_SmallFileWholeContent(t *testing.T) {
	data := []byte("short")

	f1, err := Fingerprint(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	f2, err := Fingerprint(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}

	if f1 != f2 {
		t.Errorf("Fingerprint() not deterministic: %x != %x", f1, f2)
	}
}

func TestFingerprint_SizeDominates(t *testing.T) {
	// A 0-byte file and a non-empty file must never share a signature,
	// because the size is folded in first.
	f1, err := Fingerprint(bytes.NewReader(nil), 0)
	if err != nil {
		t.Fatalf("Fingerprint(empty) error = %v", err)
	}
	f2, err := Fingerprint(bytes.NewReader(make([]byte, 10)), 10)
	if err != nil {
		t.Fatalf("Fingerprint(10 bytes) error = %v", err)
	}

	if f1 == f2 {
		t.Error("signatures of 0-byte and 10-byte files collide")
	}
}

func TestFingerprint_TailWindowMatters(t *testing.T) {
	// Two large files identical in the head window but different at the
	// very end must fingerprint differently.
	size := int64(WindowSize + 4096)
	a := make([]byte, size)
	b := make([]byte, size)
	b[size-1] = 0xFF

	fa, err := Fingerprint(bytes.NewReader(a), size)
	if err != nil {
		t.Fatalf("Fingerprint(a) error = %v", err)
	}
	fb, err := Fingerprint(bytes.NewReader(b), size)
	if err != nil {
		t.Fatalf("Fingerprint(b) error = %v", err)
	}

	if fa == fb {
		t.Error("fingerprint blind to tail window")
	}
}

func TestFingerprint_MiddleBytesIgnored(t *testing.T) {
	// The fingerprint is intentionally partial: bytes strictly between
	// the two windows do not contribute.
	size := int64(3 * WindowSize)
	a := make([]byte, size)
	b := make([]byte, size)
	b[WindowSize+100] = 0xFF

	fa, _ := Fingerprint(bytes.NewReader(a), size)
	fb, _ := Fingerprint(bytes.NewReader(b), size)

	if fa != fb {
		t.Error("fingerprint read beyond its windows")
	}
}

func TestBuilder_FieldOrderMatters(t *testing.T) {
	b1 := NewBuilder()
	b1.WriteUint64(1)
	b1.WriteUint64(2)

	b2 := NewBuilder()
	b2.WriteUint64(2)
	b2.WriteUint64(1)

	if b1.Sum64() == b2.Sum64() {
		t.Error("Builder digest ignored field order")
	}
}
