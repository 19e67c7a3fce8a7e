package audit

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recorder is an append-only sink for check and fix outcomes. Records are
// write-only; nothing in the service reads them back. Callers must not put
// credentials in the data map.
type Recorder interface {
	Record(level zerolog.Level, event string, data map[string]any)
}

type fileRecorder struct {
	logger zerolog.Logger
}

// NewFileRecorder appends JSON lines to <dir>/audit.log, creating the
// directory if needed.
func NewFileRecorder(dir string) (Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "audit.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return NewWriterRecorder(f), nil
}

// NewWriterRecorder records to an arbitrary writer. Used by tests and by the
// file recorder.
func NewWriterRecorder(w io.Writer) Recorder {
	logger := zerolog.New(w).With().Timestamp().Logger()
	return &fileRecorder{logger: logger}
}

func (r *fileRecorder) Record(level zerolog.Level, event string, data map[string]any) {
	evt := r.logger.WithLevel(level).
		Str("id", uuid.NewString()).
		Str("event", event)
	if len(data) > 0 {
		evt = evt.Fields(data)
	}
	evt.Msg(event)
}

type nopRecorder struct{}

// NewNopRecorder swallows records. Used when the audit directory cannot be
// created; the service keeps running in that case.
func NewNopRecorder() Recorder {
	return nopRecorder{}
}

func (nopRecorder) Record(zerolog.Level, string, map[string]any) {}
