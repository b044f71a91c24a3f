package mirror

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// maxLineSize bounds a single log line; content batches can be large.
const maxLineSize = 16 << 20

// MaxActivitySize is the largest single activity accepted, matching the
// longest log line a replay reads.
const MaxActivitySize = maxLineSize

// LogReader decodes activities from a line-oriented log. Text before the
// first '{' on a line is discarded and lines without one are skipped.
type LogReader struct {
	scanner  *bufio.Scanner
	line     int
	activity Activity
	err      error
}

// NewLogReader returns a reader over r. It consumes r once.
func NewLogReader(r io.Reader) *LogReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &LogReader{scanner: scanner}
}

// Next advances to the next activity. It returns false at the end of the
// log or on the first error, which Err then reports.
func (r *LogReader) Next() bool {
	if r.err != nil {
		return false
	}
	for r.scanner.Scan() {
		r.line++
		text := r.scanner.Bytes()
		i := bytes.IndexByte(text, '{')
		if i < 0 {
			continue
		}

		var a Activity
		// A Decoder reads the first value only, so trailing noise after the
		// payload is tolerated.
		if err := json.NewDecoder(bytes.NewReader(text[i:])).Decode(&a); err != nil {
			r.err = &LineError{Line: r.line, Err: fmt.Errorf("decoding activity: %w", err)}
			return false
		}
		r.activity = a
		return true
	}
	if err := r.scanner.Err(); err != nil {
		r.err = &LineError{Line: r.line + 1, Err: err}
	}
	return false
}

// Activity returns the activity decoded by the last call to Next.
func (r *LogReader) Activity() Activity {
	return r.activity
}

// Line returns the 1-indexed number of the last line read.
func (r *LogReader) Line() int {
	return r.line
}

// Err returns the first decode or read error.
func (r *LogReader) Err() error {
	return r.err
}

// All yields each activity with its line number. Check Err afterwards.
func (r *LogReader) All() iter.Seq2[int, Activity] {
	return func(yield func(int, Activity) bool) {
		for r.Next() {
			if !yield(r.line, r.activity) {
				return
			}
		}
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Decompress sniffs r for gzip or zstd framing and returns a reader of the
// plain log text. Closing the result does not close r.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading log header: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening gzip log: %w", err)
		}
		return zr, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening zstd log: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return io.NopCloser(br), nil
	}
}

// OpenLog opens an activity log file, decompressing it if needed.
func OpenLog(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	rc, err := Decompress(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &logFile{ReadCloser: rc, file: f}, nil
}

type logFile struct {
	io.ReadCloser
	file *os.File
}

func (l *logFile) Close() error {
	return errors.Join(l.ReadCloser.Close(), l.file.Close())
}
