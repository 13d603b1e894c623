package dataset

import "io"

// bomReader wraps an io.Reader and skips the UTF-8 BOM if present.
// The UTF-8 BOM is 0xEF 0xBB 0xBF and is commonly added by Excel on Windows.
type bomReader struct {
	reader  io.Reader
	checked bool
	buf     [3]byte
	pending []byte // bytes read during the BOM check that belong to the data
}

func newBOMReader(r io.Reader) *bomReader {
	return &bomReader{reader: r}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *bomReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if !r.checked {
		r.checked = true

		n, err := io.ReadFull(r.reader, r.buf[:])
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		if n == 3 && r.buf[0] == 0xEF && r.buf[1] == 0xBB && r.buf[2] == 0xBF {
			n = 0
		}
		r.pending = r.buf[:n]
		if err != nil && (err != io.EOF || n == 0) {
			return 0, err
		}
	}

	if len(r.pending) > 0 {
		copied := copy(p, r.pending)
		r.pending = r.pending[copied:]
		return copied, nil
	}

	return r.reader.Read(p)
}
