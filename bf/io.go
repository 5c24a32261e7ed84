package bf

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// IO is the byte-level capability the runtime uses for `,` and `.`.
// ReadChar reports ok=false with a nil error once input is exhausted.
type IO interface {
	ReadChar() (b byte, ok bool, err error)
	WriteChar(b byte) error
}

type flusher interface {
	Flush() error
}

// StreamIO adapts an io.Reader and io.Writer. Output is buffered and flushed
// before every read so interactive prompts are visible.
type StreamIO struct {
	r *bufio.Reader
	w *bufio.Writer
}

func NewStreamIO(r io.Reader, w io.Writer) *StreamIO {
	return &StreamIO{r: bufio.NewReader(r), w: bufio.NewWriter(w)}
}

func (s *StreamIO) ReadChar() (byte, bool, error) {
	if err := s.w.Flush(); err != nil {
		return 0, false, err
	}
	b, err := s.r.ReadByte()
	if errors.Is(err, io.EOF) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return b, true, nil
}

func (s *StreamIO) WriteChar(b byte) error {
	return s.w.WriteByte(b)
}

func (s *StreamIO) Flush() error {
	return s.w.Flush()
}

// BufferIO serves input from memory and records output, for tests and
// embedding hosts such as the REPL.
type BufferIO struct {
	input  []byte
	output bytes.Buffer
}

func NewBufferIO(input []byte) *BufferIO {
	return &BufferIO{input: append([]byte(nil), input...)}
}

// Feed appends bytes to the pending input.
func (b *BufferIO) Feed(p []byte) {
	b.input = append(b.input, p...)
}

// Pending returns the number of unread input bytes.
func (b *BufferIO) Pending() int {
	return len(b.input)
}

func (b *BufferIO) ReadChar() (byte, bool, error) {
	if len(b.input) == 0 {
		return 0, false, nil
	}
	c := b.input[0]
	b.input = b.input[1:]
	return c, true, nil
}

func (b *BufferIO) WriteChar(c byte) error {
	return b.output.WriteByte(c)
}

// Output returns a copy of everything written so far.
func (b *BufferIO) Output() []byte {
	return bytes.Clone(b.output.Bytes())
}

// Reset drops pending input and recorded output.
func (b *BufferIO) Reset() {
	b.input = nil
	b.output.Reset()
}
