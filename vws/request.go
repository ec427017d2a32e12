package vws

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/five82/vws/vws/auth"
)

const contentTypeJSON = "application/json"

// Request is a fully built, signed request. Its body is final: the
// Content-MD5 component of the signature was computed over exactly Body.
type Request struct {
	Method string
	// URL is the absolute URL the request is sent to.
	URL string
	// Path is the API path that was signed, for example /targets/abc.
	Path   string
	Header http.Header
	Body   []byte
}

// Canonical re-derives the signed attributes from the request as built. The
// content type is the media type of the Content-Type header without
// parameters, so a multipart boundary does not take part in the signature.
func (r *Request) Canonical() auth.Canonical {
	ct := r.Header.Get("Content-Type")
	if ct != "" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
			ct = mediaType
		}
	}
	return auth.Canonical{
		Method:      r.Method,
		ContentMD5:  auth.ContentMD5(r.Body),
		ContentType: ct,
		Date:        r.Header.Get("Date"),
		Path:        r.Path,
	}
}

// requestBuilder turns an endpoint call into a signed Request.
type requestBuilder struct {
	baseURL *url.URL
	creds   auth.Credentials
	now     func() time.Time
}

// build signs the finalized body and assembles headers. contentType may be
// empty for requests without a body. Extra headers are added after signing
// and never take part in the signature.
func (b *requestBuilder) build(method, path, contentType string, body []byte, extra http.Header) *Request {
	if body == nil {
		body = []byte{}
	}
	signedType := contentType
	if signedType != "" {
		if mediaType, _, err := mime.ParseMediaType(signedType); err == nil {
			signedType = mediaType
		}
	}
	date := auth.Date(b.now())
	canonical := auth.Canonical{
		Method:      method,
		ContentMD5:  auth.ContentMD5(body),
		ContentType: signedType,
		Date:        date,
		Path:        path,
	}

	header := make(http.Header, 4+len(extra))
	header.Set("Date", date)
	header.Set("Authorization", auth.Header(b.creds, canonical))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	for key, values := range extra {
		for _, v := range values {
			header.Add(key, v)
		}
	}

	return &Request{
		Method: method,
		URL:    joinURL(b.baseURL, path),
		Path:   path,
		Header: header,
		Body:   body,
	}
}

// buildJSON serializes payload once and signs those exact bytes.
func (b *requestBuilder) buildJSON(method, path string, payload any) (*Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return b.build(method, path, contentTypeJSON, body, nil), nil
}

// formFile is a single file part of a multipart body.
type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// buildMultipart encodes fields and files with a fresh boundary and signs the
// resulting bytes.
func (b *requestBuilder) buildMultipart(method, path string, fields [][2]string, files []formFile) (*Request, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.SetBoundary(newBoundary()); err != nil {
		return nil, fmt.Errorf("set multipart boundary: %w", err)
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, fmt.Errorf("create %s part: %w", f.field, err)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, fmt.Errorf("write %s part: %w", f.field, err)
		}
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, fmt.Errorf("write %s field: %w", kv[0], err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}
	return b.build(method, path, mw.FormDataContentType(), buf.Bytes(), nil), nil
}

func newBoundary() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func joinURL(base *url.URL, path string) string {
	u := *base
	u.Path = strings.TrimRight(base.Path, "/") + path
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// parseBaseURL normalizes a configured base URL. A bare host gets https.
func parseBaseURL(raw, fallback string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = fallback
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("missing host in %q", raw)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed, nil
}
