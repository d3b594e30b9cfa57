package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

type extractorState int

const (
	stateStart extractorState = iota
	stateArray
	stateDone
)

// Extractor pulls item.path values out of a JSON manifest, decoding one
// array element at a time.
type Extractor struct {
	dec   *json.Decoder
	opts  options
	state extractorState
	stats Stats
	err   error
}

// NewExtractor returns an extractor reading UTF-8 JSON from r. The caller
// is responsible for stripping any byte order mark first.
func NewExtractor(r io.Reader, opts ...Option) *Extractor {
	return &Extractor{
		dec:  json.NewDecoder(r),
		opts: newOptions(opts),
	}
}

// Next returns the next path, or io.EOF after the closing bracket.
func (e *Extractor) Next() (string, error) {
	rec, err := e.NextRecord()
	if err != nil {
		return "", err
	}
	return rec.Path, nil
}

// NextRecord returns the next record that carries a path and passes the
// configured filters.
func (e *Extractor) NextRecord() (Record, error) {
	if e.err != nil {
		return Record{}, e.err
	}
	rec, err := e.next()
	if err != nil {
		e.err = err
		if errors.Is(err, io.EOF) {
			e.opts.logger.Debug("manifest exhausted",
				"elements", e.stats.Elements,
				"paths", e.stats.Yielded,
				"skipped", e.stats.Skipped,
				"filtered", e.stats.Filtered)
		}
		return Record{}, err
	}
	e.stats.Yielded++
	return rec, nil
}

// Stats returns counters for the input consumed so far.
func (e *Extractor) Stats() Stats {
	return e.stats
}

func (e *Extractor) next() (Record, error) {
	if e.state == stateStart {
		if err := e.openArray(); err != nil {
			return Record{}, err
		}
		e.state = stateArray
	}
	if e.state == stateDone {
		return Record{}, io.EOF
	}

	for e.dec.More() {
		var raw json.RawMessage
		if err := e.dec.Decode(&raw); err != nil {
			return Record{}, e.parseError(err)
		}
		e.stats.Elements++

		rec, ok, err := decodeRecord(raw)
		if err != nil {
			return Record{}, &ParseError{Offset: e.dec.InputOffset(), Err: err}
		}
		if !ok {
			e.stats.Skipped++
			continue
		}
		if !e.opts.keep(rec) {
			e.stats.Filtered++
			continue
		}
		return rec, nil
	}

	if err := e.closeArray(); err != nil {
		return Record{}, err
	}
	e.state = stateDone
	return Record{}, io.EOF
}

func (e *Extractor) openArray() error {
	tok, err := e.dec.Token()
	if err != nil {
		return e.parseError(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return &ParseError{Offset: e.dec.InputOffset(), Err: ErrNotArray}
	}
	return nil
}

func (e *Extractor) closeArray() error {
	tok, err := e.dec.Token()
	if err != nil {
		return e.parseError(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != ']' {
		return &ParseError{Offset: e.dec.InputOffset(), Err: ErrTrailingData}
	}
	if _, err := e.dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = ErrTrailingData
		}
		return e.parseError(err)
	}
	return nil
}

// parseError converts decoder failures. A bare io.EOF inside the array
// means the input was truncated.
func (e *Extractor) parseError(err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	offset := e.dec.InputOffset()
	var syntax *json.SyntaxError
	if errors.As(err, &syntax) {
		offset = max(offset, syntax.Offset)
	}
	return &ParseError{Offset: offset, Err: err}
}

// decodeRecord reports ok=false for elements that are not objects or have
// no "path" key.
func decodeRecord(raw json.RawMessage) (Record, bool, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Record{}, false, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return Record{}, false, err
	}
	rawPath, ok := fields["path"]
	if !ok {
		return Record{}, false, nil
	}

	var rec Record
	if err := json.Unmarshal(rawPath, &rec.Path); err != nil || bytes.Equal(rawPath, []byte("null")) {
		return Record{}, false, ErrPathNotString
	}
	if rawType, ok := fields["type"]; ok {
		var t string
		if json.Unmarshal(rawType, &t) == nil {
			rec.Type = EntryType(t)
		}
	}
	return rec, true, nil
}

var _ Source = (*Extractor)(nil)
