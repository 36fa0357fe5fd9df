package publisher

import (
	"errors"
	"sync"

	"github.com/atotto/clipboard"

	"nexletter/generator"
)

// ClipboardError wraps a failed copy.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string { return "clipboard: " + e.Err.Error() }
func (e *ClipboardError) Unwrap() error { return e.Err }

// SystemClipboard writes to the clipboard of the machine running the process.
type SystemClipboard struct{}

func (SystemClipboard) Copy(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return &ClipboardError{Err: err}
	}
	return nil
}

// MemoryClipboard keeps the last copied text in memory. Used when the process
// has no display, e.g. behind the HTTP API where the browser does the real copy.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

func (m *MemoryClipboard) Copy(text string) error {
	if text == "" {
		return &ClipboardError{Err: errors.New("nothing to copy")}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// Text returns the last copied text.
func (m *MemoryClipboard) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

var (
	_ generator.Clipboard = SystemClipboard{}
	_ generator.Clipboard = (*MemoryClipboard)(nil)
)
