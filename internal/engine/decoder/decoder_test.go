package decoder

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/konst007/chgk/internal/engine/types"
)

// mkDoc builds a <search> document around the given question bodies.
func mkDoc(questions ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n<search>\n")
	for _, q := range questions {
		b.WriteString("  <question>" + q + "</question>\n")
	}
	b.WriteString("</search>")
	return b.String()
}

func decodeString(t *testing.T, doc string, opts ...Option) ([]types.Record, error) {
	t.Helper()
	return NewStreamDecoder(strings.NewReader(doc), opts...).Decode()
}

func TestDecode_SingleQuestionMissingComment(t *testing.T) {
	recs, err := decodeString(t, `<search><question><Question>Q1</Question><Answer>A1</Answer></question></search>`)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, types.Record{Text: "Q1", Answer: "A1", Comment: ""}, recs[0])
}

func TestDecode_CountAndOrder(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7} {
		t.Run(fmt.Sprintf("%d questions", n), func(t *testing.T) {
			qs := make([]string, n)
			for i := range qs {
				qs[i] = fmt.Sprintf("<Question>q%d</Question><Answer>a%d</Answer><Comments>c%d</Comments>", i, i, i)
			}

			recs, err := decodeString(t, mkDoc(qs...))
			require.NoError(t, err)
			require.NotNil(t, recs)
			require.Len(t, recs, n)
			for i, r := range recs {
				assert.Equal(t, fmt.Sprintf("q%d", i), r.Text)
				assert.Equal(t, fmt.Sprintf("a%d", i), r.Answer)
				assert.Equal(t, fmt.Sprintf("c%d", i), r.Comment)
			}
		})
	}
}

func TestDecode_SkipsUnknownTags(t *testing.T) {
	doc := `<search>
  <total>2</total>
  <meta><source><name>db</name></source></meta>
  <question>
    <QuestionId>17</QuestionId>
    <Question>first</Question>
    <Authors><a>x</a><a>y<b/></a></Authors>
    <Answer>one</Answer>
  </question>
  <question>
    <Comments>note</Comments>
    <Extra><Question>nested decoy</Question></Extra>
    <Question>second</Question>
  </question>
</search>`

	recs, err := decodeString(t, doc)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, types.Record{Text: "first", Answer: "one"}, recs[0])
	assert.Equal(t, types.Record{Text: "second", Comment: "note"}, recs[1])
}

func TestDecode_EmptyAndSelfClosingLeaves(t *testing.T) {
	recs, err := decodeString(t, mkDoc(`<Question/><Answer></Answer><Comments>c</Comments>`, ``))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, types.Record{Comment: "c"}, recs[0])
	assert.True(t, recs[1].IsEmpty())
}

func TestDecode_TextWithCDATACommentsAndEntities(t *testing.T) {
	recs, err := decodeString(t, mkDoc(`<Question>a &amp; <![CDATA[<b>]]><!-- hidden -->c&nbsp;d</Question>`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a & <b>c\u00a0d", recs[0].Text)
}

func TestDecode_PreservesWhitespaceInLeaves(t *testing.T) {
	recs, err := decodeString(t, mkDoc("<Question>\n  line one\n  line two\n</Question>"))
	require.NoError(t, err)
	assert.Equal(t, "\n  line one\n  line two\n", recs[0].Text)
}

func TestDecode_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"mismatched end tag", `<search><question><Question>Q1</Answer></question></search>`},
		{"unterminated root", `<search><question><Question>Q1</Question></question>`},
		{"unterminated leaf", `<search><question><Question>Q1`},
		{"wrong root", `<rss><question><Question>Q1</Question></question></rss>`},
		{"empty document", ``},
		{"prolog only", `<?xml version="1.0"?><!-- nothing -->`},
		{"element inside leaf", mkDoc(`<Question>Q <i>1</i></Question>`)},
		{"garbage", `not xml at all <<<`},
		{"invalid utf-8", "<search><question><Question>\xff\xfe</Question></question></search>"},
		{"unknown encoding", `<?xml version="1.0" encoding="x-klingon"?><search/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := decodeString(t, tt.doc)
			require.Error(t, err)
			assert.Nil(t, recs, "decoder must not return partial results")
			assert.ErrorIs(t, err, types.ErrStructural)
			assert.ErrorIs(t, err, types.ErrParse)

			var se *types.StructuralError
			assert.True(t, errors.As(err, &se))
		})
	}
}

func TestDecode_WrongRootMessage(t *testing.T) {
	_, err := decodeString(t, `<rss/>`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected root <search>, found <rss>")
}

func TestDecode_ReportsLine(t *testing.T) {
	_, err := decodeString(t, "<search>\n<question>\n<Question>x</Answer>\n</question>\n</search>")
	require.Error(t, err)

	var se *types.StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 3, se.Line)
}

func TestDecode_DeclaredCharset(t *testing.T) {
	body, err := charmap.Windows1251.NewEncoder().String(
		`<?xml version="1.0" encoding="windows-1251"?><search><question><Question>Вопрос</Question></question></search>`)
	require.NoError(t, err)

	recs, err := decodeString(t, body)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Вопрос", recs[0].Text)
}

func TestDecode_TransportCharsetOverridesDeclaration(t *testing.T) {
	// Server says windows-1251 in Content-Type, document says nothing.
	body, err := charmap.Windows1251.NewEncoder().String(
		`<search><question><Answer>Ответ</Answer></question></search>`)
	require.NoError(t, err)

	recs, err := decodeString(t, body, WithCharset("windows-1251"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Ответ", recs[0].Answer)
}

func TestDecode_UTF8CharsetOptionIsNoop(t *testing.T) {
	recs, err := decodeString(t, mkDoc(`<Question>Привет</Question>`), WithCharset("UTF-8"))
	require.NoError(t, err)
	assert.Equal(t, "Привет", recs[0].Text)
}

func TestDecode_RecordHook(t *testing.T) {
	var seen []int
	recs, err := decodeString(t, mkDoc(`<Question>a</Question>`, `<Question>b</Question>`, `<Question>c</Question>`),
		WithRecordHook(func(n int) { seen = append(seen, n) }))
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

type failingReader struct {
	data []byte
	err  error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if len(f.data) == 0 {
		return 0, f.err
	}
	n := copy(p, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestDecode_ReadErrorIsNotStructural(t *testing.T) {
	boom := errors.New("connection reset")
	r := &failingReader{data: []byte(`<search><question><Question>partial`), err: boom}

	recs, err := NewStreamDecoder(r).Decode()
	require.Error(t, err)
	assert.Nil(t, recs)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, types.ErrStructural)
}

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}

func TestParse_ClosesStream(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rc := &trackingCloser{Reader: strings.NewReader(mkDoc(`<Question>q</Question>`))}
		recs, err := Parse(rc)
		require.NoError(t, err)
		assert.Len(t, recs, 1)
		assert.True(t, rc.closed)
	})

	t.Run("failure", func(t *testing.T) {
		rc := &trackingCloser{Reader: strings.NewReader(`<nope>`)}
		_, err := Parse(rc)
		require.Error(t, err)
		assert.True(t, rc.closed)
	})
}
