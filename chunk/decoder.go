// Package chunk decodes HTTP/1.1 chunked transfer coding from any byte source.
//
// The decoder reads the source one byte at a time while parsing chunk framing,
// so it never consumes bytes past the terminating zero-size chunk. Trailer
// headers are not supported: the last chunk must be followed directly by CRLF.
package chunk

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidChunk is returned for every framing problem: bad size digits, a
// missing CR or LF, or a source that ends in the middle of the stream.
var ErrInvalidChunk = errors.New("chunk: invalid chunked encoding")

const maxSizeLineLength = 4096

// Decoder is an io.Reader yielding the payload of a chunked stream.
type Decoder struct {
	src       io.Reader
	remaining uint64
	inChunk   bool
	done      bool
	err       error
	scratch   [1]byte
}

func NewDecoder(src io.Reader) *Decoder {
	return &Decoder{src: src}
}

// Read fills p with payload bytes. A single call never crosses a chunk
// boundary; when p is smaller than what is left of the current chunk the
// rest is returned by later calls. Read returns io.EOF once the zero-size
// chunk and its CRLF have been consumed.
func (d *Decoder) Read(p []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if d.done {
		return 0, io.EOF
	}

	if !d.inChunk {
		size, err := d.readChunkSize()
		if err != nil {
			return 0, d.fail(err)
		}
		if size == 0 {
			if err := d.readCRLF(); err != nil {
				return 0, d.fail(err)
			}
			d.done = true
			return 0, io.EOF
		}
		d.remaining = size
		d.inChunk = true
	}

	if len(p) == 0 {
		return 0, nil
	}
	if uint64(len(p)) > d.remaining {
		p = p[:d.remaining]
	}

	n, err := d.src.Read(p)
	d.remaining -= uint64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, d.fail(err)
	}
	if n == 0 && errors.Is(err, io.EOF) {
		return 0, d.fail(ErrInvalidChunk)
	}

	if d.remaining == 0 {
		d.inChunk = false
		if err := d.readCRLF(); err != nil {
			return n, d.fail(err)
		}
	}
	return n, nil
}

// readChunkSize parses "<hex>[;ext]\r\n". Extensions are skipped.
func (d *Decoder) readChunkSize() (uint64, error) {
	var line strings.Builder
	extension := false

	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		if b == '\r' {
			break
		}
		if b == ';' {
			extension = true
			break
		}
		if line.Len() >= maxSizeLineLength {
			return 0, ErrInvalidChunk
		}
		line.WriteByte(b)
	}

	if extension {
		for skipped := 0; ; skipped++ {
			b, err := d.readByte()
			if err != nil {
				return 0, err
			}
			if b == '\r' {
				break
			}
			if skipped >= maxSizeLineLength {
				return 0, ErrInvalidChunk
			}
		}
	}

	if err := d.expect('\n'); err != nil {
		return 0, err
	}

	size, err := strconv.ParseUint(strings.TrimSpace(line.String()), 16, 63)
	if err != nil {
		return 0, ErrInvalidChunk
	}
	return size, nil
}

func (d *Decoder) readCRLF() error {
	if err := d.expect('\r'); err != nil {
		return err
	}
	return d.expect('\n')
}

func (d *Decoder) expect(want byte) error {
	b, err := d.readByte()
	if err != nil {
		return err
	}
	if b != want {
		return ErrInvalidChunk
	}
	return nil
}

func (d *Decoder) readByte() (byte, error) {
	if br, ok := d.src.(io.ByteReader); ok {
		b, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return 0, ErrInvalidChunk
		}
		return b, err
	}

	_, err := io.ReadFull(d.src, d.scratch[:])
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, ErrInvalidChunk
	}
	return d.scratch[0], err
}

func (d *Decoder) fail(err error) error {
	d.err = err
	return err
}
