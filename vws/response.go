package vws

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// Response is a raw response from the management or query API. It is
// attached to every error produced from a received response so callers can
// always inspect what came over the wire.
//
// A Response is not modified after it is returned by a Transport.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	// Method and URL identify the request that produced this response.
	Method string
	URL    string
	// APIPath is the signed API path, without any base URL prefix.
	APIPath string
	// RequestBody is the exact body that was signed and sent.
	RequestBody []byte

	jsonOnce sync.Once
	jsonView map[string]any
	jsonErr  error
}

// Text returns the body as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Body)
}

// ContentType returns the media type of the Content-Type header without parameters.
func (r *Response) ContentType() string {
	if r == nil {
		return ""
	}
	raw := r.Header.Get("Content-Type")
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}

// IsJSON reports whether the Content-Type header announces a JSON body.
func (r *Response) IsJSON() bool {
	ct := r.ContentType()
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}

// JSON returns the body decoded as a JSON object. The body is parsed on the
// first call; later calls return the same view.
func (r *Response) JSON() (map[string]any, error) {
	r.jsonOnce.Do(func() {
		var view map[string]any
		if err := json.Unmarshal(r.Body, &view); err != nil {
			r.jsonErr = err
			return
		}
		r.jsonView = view
	})
	return r.jsonView, r.jsonErr
}

// ResultCode returns the result_code field of a JSON body, if there is one.
func (r *Response) ResultCode() (string, bool) {
	if r == nil || len(r.Body) == 0 {
		return "", false
	}
	view, err := r.JSON()
	if err != nil {
		return "", false
	}
	code, ok := view["result_code"].(string)
	if !ok || code == "" {
		return "", false
	}
	return code, true
}

// Path returns the path component of the request URL.
func (r *Response) Path() string {
	if r == nil {
		return ""
	}
	if r.APIPath != "" {
		return r.APIPath
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return u.Path
}
