package tollgate

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Header names the HTTP integrations accept proof fields in.
const (
	HeaderSignature = "X-Payment-Signature"
	HeaderSession   = "X-Payment-Session"
	HeaderBypass    = "X-Payment-Bypass"
)

// maxProofPeekBytes bounds how much of a JSON body is buffered while looking
// for proof fields.
const maxProofPeekBytes = 1 << 20

// RequestFromHTTP extracts payment proof fields from an HTTP request.
//
// Headers take precedence. When no proof header is present and the request
// carries a JSON body, the body's proof fields are used; the body is restored
// so the downstream handler can still read its own payload.
func RequestFromHTTP(r *http.Request) Request {
	req := Request{
		Signature:   r.Header.Get(HeaderSignature),
		SessionID:   r.Header.Get(HeaderSession),
		BypassToken: r.Header.Get(HeaderBypass),
	}
	if req.Signature != "" || req.SessionID != "" || req.BypassToken != "" {
		return req
	}

	if r.Body == nil || r.Body == http.NoBody {
		return req
	}
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return req
	}

	peeked, err := io.ReadAll(io.LimitReader(r.Body, maxProofPeekBytes))
	r.Body = restoredBody{
		Reader: io.MultiReader(bytes.NewReader(peeked), r.Body),
		Closer: r.Body,
	}
	if err != nil {
		return req
	}

	// Best effort: a malformed body simply yields no proof, and the handler's
	// own decoding reports the real error.
	_ = json.Unmarshal(peeked, &req)
	return req
}

type restoredBody struct {
	io.Reader
	io.Closer
}
