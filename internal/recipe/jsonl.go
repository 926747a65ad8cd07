package recipe

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer serializes items to a newline-delimited JSON stream.
// Writes are safe for concurrent use; the crawl emits records from
// collector callbacks running on multiple goroutines.
type Writer struct {
	mu  sync.Mutex
	w   *bufio.Writer
	enc *json.Encoder
}

// NewWriter wraps w in a record stream writer.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{
		w:   bw,
		enc: json.NewEncoder(bw),
	}
}

// Write appends one record to the stream.
func (w *Writer) Write(item *Item) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(item); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

// Flush writes any buffered records through to the underlying writer.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Flush()
}

// ReadAll decodes every record from a newline-delimited JSON stream.
func ReadAll(r io.Reader) ([]*Item, error) {
	var items []*Item
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode record at line %d: %w", line, err)
		}
		items = append(items, &item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read record stream: %w", err)
	}
	return items, nil
}

// ReadFile decodes every record from the file at path.
func ReadFile(path string) ([]*Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	defer f.Close()
	return ReadAll(f)
}
