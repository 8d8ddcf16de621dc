package hash

import (
	"bytes"
	"fmt"
	"io"
)

// Equal streams a and b in lockstep chunks of bufSize bytes and reports
// whether their contents are byte-identical. It returns false on the
// first mismatching chunk and true only when both streams exhaust
// simultaneously. This is the final arbiter behind every file group: a
// 64-bit non-cryptographic digest can collide, a byte compare cannot.
//
// Callers that know both sizes should short-circuit on a size mismatch
// before opening either stream.
func Equal(a, b io.Reader, bufSize int) (bool, error) {
	ba := make([]byte, bufSize)
	bb := make([]byte, bufSize)

	for {
		na, err := readFull(a, ba)
		if err != nil {
			return false, fmt.Errorf("read left: %w", err)
		}
		nb, err := readFull(b, bb)
		if err != nil {
			return false, fmt.Errorf("read right: %w", err)
		}

		if na != nb {
			return false, nil
		}
		if na == 0 {
			return true, nil
		}
		if !bytes.Equal(ba[:na], bb[:nb]) {
			return false, nil
		}
	}
}

// readFull fills buf as far as the stream allows. A clean end of stream
// is not an error; short reads before EOF are retried so both sides
// always compare equal-length chunks.
func readFull(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	return n, err
}
