package decoder

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is wrapped by a DecodeError for files whose extension
// has no registered decoder.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DecodeError reports a file that could not be decoded. It never aborts a
// batch; the loader collects one per failing file.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.File, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// MarshalJSON renders the error for API reports.
func (e *DecodeError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		File  string `json:"file"`
		Error string `json:"error"`
	}{e.File, e.Err.Error()})
}

// EmptyDatasetWarning reports a file that decoded to zero usable rows and
// was dropped from the batch.
type EmptyDatasetWarning struct {
	File string `json:"file"`
}

func (w EmptyDatasetWarning) String() string {
	return fmt.Sprintf("%s: no usable rows", w.File)
}
