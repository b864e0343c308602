package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type JSONFileWriter struct {
	Path string
}

// WriteJSON persists v as pretty-printed JSON to w.Path.
//
// The content goes to a temp file in the same directory first and replaces
// w.Path via os.Rename only after a successful encode and close, so readers
// never observe a half-written file. An empty Path is a no-op.
func (w JSONFileWriter) WriteJSON(v any) error {
	if w.Path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(w.Path), 0o755); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}

	tmp := fmt.Sprintf("%s.tmp.%d", w.Path, time.Now().UnixNano())
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode %s: %w", w.Path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, w.Path)
}
