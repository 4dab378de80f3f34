// Package decoder turns a question feed document into records.
//
// The expected shape is
//
//	<search>
//	  <question>
//	    <Question>...</Question>
//	    <Answer>...</Answer>
//	    <Comments>...</Comments>
//	  </question>
//	  ...
//	</search>
//
// Leaves are optional. Anything else is skipped together with its subtree so
// new fields on the server side do not break older clients.
package decoder

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/konst007/chgk/internal/engine/types"
)

const (
	rootTag     = "search"
	questionTag = "question"
	textTag     = "Question"
	answerTag   = "Answer"
	commentTag  = "Comments"
)

// Option configures a StreamDecoder.
type Option func(*StreamDecoder)

// WithCharset forces the document charset, overriding the XML declaration.
// Transports pass the Content-Type charset here.
func WithCharset(label string) Option {
	return func(d *StreamDecoder) {
		d.charset = strings.TrimSpace(label)
	}
}

// WithRecordHook registers fn to be called after each record is decoded with
// the running record count.
func WithRecordHook(fn func(n int)) Option {
	return func(d *StreamDecoder) {
		d.onRecord = fn
	}
}

// StreamDecoder pulls tokens from an XML stream and collects records.
// A StreamDecoder is single use.
type StreamDecoder struct {
	xd       *xml.Decoder
	src      *sourceReader
	charset  string
	onRecord func(n int)
	count    int
}

// sourceReader remembers the last read error so I/O failures can be told
// apart from malformed input.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		s.err = err
	}
	return n, err
}

// NewStreamDecoder prepares a decoder reading from r.
func NewStreamDecoder(r io.Reader, opts ...Option) *StreamDecoder {
	d := &StreamDecoder{}
	for _, opt := range opts {
		opt(d)
	}

	d.src = &sourceReader{r: r}
	var in io.Reader = d.src
	transcoded := false
	if d.charset != "" && !isUTF8(d.charset) {
		if cr, err := charset.NewReaderLabel(d.charset, in); err == nil {
			in = cr
			transcoded = true
		}
	}

	xd := xml.NewDecoder(in)
	xd.Strict = true
	xd.Entity = xml.HTMLEntity
	if transcoded {
		// Already UTF-8; ignore whatever the declaration claims.
		xd.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
			return input, nil
		}
	} else {
		xd.CharsetReader = charset.NewReaderLabel
	}
	d.xd = xd

	return d
}

// Parse decodes every record from rc and closes it. It is all-or-nothing: on
// error no records are returned.
func Parse(rc io.ReadCloser, opts ...Option) ([]types.Record, error) {
	defer rc.Close()
	return NewStreamDecoder(rc, opts...).Decode()
}

// Decode reads the document and returns its records in document order.
func (d *StreamDecoder) Decode() ([]types.Record, error) {
	root, err := d.firstElement()
	if err != nil {
		return nil, err
	}
	if root.Name.Local != rootTag {
		return nil, d.structural(fmt.Sprintf("expected root <%s>, found <%s>", rootTag, root.Name.Local), nil)
	}

	records := make([]types.Record, 0, 1)
	for {
		tok, err := d.xd.Token()
		if err != nil {
			return nil, d.wrap(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != questionTag {
				if err := d.skip(); err != nil {
					return nil, err
				}
				continue
			}
			rec, err := d.readQuestion()
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
			d.count++
			if d.onRecord != nil {
				d.onRecord(d.count)
			}
		case xml.EndElement:
			// Strict mode guarantees this closes the root.
			return records, nil
		}
	}
}

// firstElement skips the prolog and returns the root start tag.
func (d *StreamDecoder) firstElement() (xml.StartElement, error) {
	for {
		tok, err := d.xd.Token()
		if err == io.EOF {
			return xml.StartElement{}, d.structural("missing root element", nil)
		}
		if err != nil {
			return xml.StartElement{}, d.wrap(err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

func (d *StreamDecoder) readQuestion() (types.Record, error) {
	var rec types.Record
	for {
		tok, err := d.xd.Token()
		if err != nil {
			return types.Record{}, d.wrap(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			var dst *string
			switch t.Name.Local {
			case textTag:
				dst = &rec.Text
			case answerTag:
				dst = &rec.Answer
			case commentTag:
				dst = &rec.Comment
			default:
				if err := d.skip(); err != nil {
					return types.Record{}, err
				}
				continue
			}
			text, err := d.readLeaf(t.Name.Local)
			if err != nil {
				return types.Record{}, err
			}
			*dst = text
		case xml.EndElement:
			return rec, nil
		}
	}
}

// readLeaf returns the character data of a text-only element. The element's
// end tag must follow its text.
func (d *StreamDecoder) readLeaf(name string) (string, error) {
	var b strings.Builder
	for {
		tok, err := d.xd.Token()
		if err != nil {
			return "", d.wrap(err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			return b.String(), nil
		case xml.StartElement:
			return "", d.structural(fmt.Sprintf("unexpected <%s> inside <%s>", t.Name.Local, name), nil)
		}
	}
}

func (d *StreamDecoder) skip() error {
	if err := d.xd.Skip(); err != nil {
		return d.wrap(err)
	}
	return nil
}

// wrap classifies a decoder error: failures of the underlying reader pass
// through untouched, everything else is a structural error.
func (d *StreamDecoder) wrap(err error) error {
	if d.src.err != nil && errors.Is(err, d.src.err) {
		return fmt.Errorf("decoder: read: %w", err)
	}

	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &types.StructuralError{Line: se.Line, Msg: se.Msg}
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return d.structural("unexpected end of document", err)
	}
	return d.structural("", err)
}

func (d *StreamDecoder) structural(msg string, err error) error {
	line, _ := d.xd.InputPos()
	return &types.StructuralError{Line: line, Msg: msg, Err: err}
}

func isUTF8(label string) bool {
	switch strings.ToLower(label) {
	case "utf-8", "utf8", "us-ascii", "ascii":
		return true
	}
	return false
}
