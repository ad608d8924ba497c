package draw

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// maxChunkSize keeps single writes below a typical MTU so frames stream
// smoothly over SSH.
const maxChunkSize = 1400

// Escape sequences.
const (
	clearScreen = "\033[H\033[2J"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// ChunkWriter accumulates one frame of terminal output and writes it in
// chunks on Flush.
type ChunkWriter struct {
	buf    strings.Builder
	bufw   *bufio.Writer
	numBuf [20]byte // scratch for allocation-free integer formatting
}

// NewChunkWriter wraps w.
func NewChunkWriter(w io.Writer) *ChunkWriter {
	return &ChunkWriter{bufw: bufio.NewWriterSize(w, 8192)}
}

// MoveCursor appends a cursor position sequence. col and row are 1-based.
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.buf.WriteString("\033[")
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(row), 10))
	cw.buf.WriteByte(';')
	cw.buf.Write(strconv.AppendInt(cw.numBuf[:0], int64(col), 10))
	cw.buf.WriteByte('H')
}

// Write implements io.Writer so a Canvas can render into the frame.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	return cw.buf.Write(p)
}

// WriteString appends s.
func (cw *ChunkWriter) WriteString(s string) {
	cw.buf.WriteString(s)
}

// WriteAt writes s starting at a 1-based position, clipped to width
// columns. Positions left of the screen are skipped.
func (cw *ChunkWriter) WriteAt(col, row, width int, s string) {
	if row < 1 || col < 1 || col > width {
		return
	}
	if room := width - col + 1; len(s) > room {
		s = s[:room]
	}
	cw.MoveCursor(col, row)
	cw.buf.WriteString(s)
}

// Len is the number of bytes pending.
func (cw *ChunkWriter) Len() int { return cw.buf.Len() }

// Flush writes the pending frame in chunks and resets the buffer.
func (cw *ChunkWriter) Flush() error {
	data := cw.buf.String()
	cw.buf.Reset()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		if _, err := cw.bufw.WriteString(chunk); err != nil {
			return err
		}
		data = data[len(chunk):]
	}
	return cw.bufw.Flush()
}

// TermSizeFunc returns the terminal dimensions in cells.
type TermSizeFunc func() (width, height int, err error)

// StdoutSize reads the size of the process terminal.
func StdoutSize() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// HideCursor hides the cursor and clears the screen.
func HideCursor(w io.Writer) {
	_, _ = io.WriteString(w, hideCursor+clearScreen)
}

// ShowCursor clears the screen and restores the cursor.
func ShowCursor(w io.Writer) {
	_, _ = io.WriteString(w, clearScreen+showCursor)
}
