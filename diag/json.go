package diag

import (
	"fmt"
	"io"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MarshalJSONLines writes one JSON object per diagnostic, in the bag's
// current order, to w. Each line is built field-by-field with sjson rather
// than a single struct-tagged json.Marshal of the whole slice, so that a
// tool tailing the stream can parse each line as soon as it is flushed.
// This is the JSON counterpart of WriteReport, for tooling that wants
// structured diagnostics instead of the plain-text report.
func (b *Bag) MarshalJSONLines(w io.Writer) error {
	for _, d := range b.diags {
		line, err := marshalOne(d)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func marshalOne(d Diagnostic) (string, error) {
	line := "{}"
	var err error
	line, err = sjson.Set(line, "severity", d.Severity.String())
	if err != nil {
		return "", err
	}
	line, err = sjson.Set(line, "kind", d.Kind.String())
	if err != nil {
		return "", err
	}
	line, err = sjson.Set(line, "message", d.Message)
	if err != nil {
		return "", err
	}
	line, err = sjson.Set(line, "unit", d.Unit)
	if err != nil {
		return "", err
	}
	line, err = sjson.Set(line, "pos.file", d.Pos.File)
	if err != nil {
		return "", err
	}
	line, err = sjson.Set(line, "pos.line", d.Pos.Line)
	if err != nil {
		return "", err
	}
	line, err = sjson.Set(line, "pos.column", d.Pos.Column)
	if err != nil {
		return "", err
	}
	return line, nil
}

// QueryField extracts a single top-level or dotted field (e.g. "pos.line")
// from one JSON line previously produced by MarshalJSONLines. It exists
// mainly as a test helper so diagnostics tests can assert on the emitted
// stream without re-implementing a JSON reader.
func QueryField(jsonLine, path string) gjson.Result {
	return gjson.Get(jsonLine, path)
}
