package fetch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/h2non/filetype"
	"github.com/vfaronov/httpheader"

	"github.com/konst007/chgk/internal/engine/types"
)

// contentInfo is what the response headers say about the body.
type contentInfo struct {
	MediaType string
	Charset   string
}

func inspectHeader(h http.Header) contentInfo {
	mtype, params := httpheader.ContentType(h)
	return contentInfo{
		MediaType: mtype,
		Charset:   params["charset"],
	}
}

// LooksLikeXML reports whether the media type is an XML flavour. Servers
// often send text/plain or nothing at all, so this is only advisory.
func (c contentInfo) LooksLikeXML() bool {
	return c.MediaType == "" || strings.HasSuffix(c.MediaType, "/xml") || strings.HasSuffix(c.MediaType, "+xml")
}

// sniffBinary rejects bodies whose magic bytes identify a known binary
// format, e.g. an image or archive served from a misconfigured endpoint.
func sniffBinary(br *bufio.Reader) error {
	head, err := br.Peek(types.SniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return err
	}
	if len(head) == 0 {
		return nil
	}

	kind, _ := filetype.Match(head)
	if kind == filetype.Unknown {
		return nil
	}
	return &types.TransportError{Err: fmt.Errorf("unexpected %s payload", kind.MIME.Value)}
}
