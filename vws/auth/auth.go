package auth

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Scheme is the Authorization scheme used by both the management and query APIs.
const Scheme = "VWS"

// Credentials is an access key / secret key pair.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// Validate reports whether both halves of the pair are present.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.AccessKey) == "" {
		return fmt.Errorf("access key is empty")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is empty")
	}
	return nil
}

// Canonical holds the request attributes covered by a signature.
type Canonical struct {
	Method      string
	ContentMD5  string // hex digest of the exact body bytes
	ContentType string
	Date        string
	Path        string
}

// String joins the fields with newlines, in signing order.
func (c Canonical) String() string {
	return strings.Join([]string{c.Method, c.ContentMD5, c.ContentType, c.Date, c.Path}, "\n")
}

// ContentMD5 returns the lowercase hex MD5 digest of body.
func ContentMD5(body []byte) string {
	sum := md5.Sum(body)
	return hex.EncodeToString(sum[:])
}

// Date formats t as an RFC 1123 date in GMT, the form expected in the Date header.
func Date(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// Sign returns the base64 encoded HMAC-SHA1 of the canonical string keyed by secretKey.
func Sign(secretKey string, c Canonical) string {
	mac := hmac.New(sha1.New, []byte(secretKey))
	mac.Write([]byte(c.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Header returns the Authorization header value for c signed with creds.
func Header(creds Credentials, c Canonical) string {
	return fmt.Sprintf("%s %s:%s", Scheme, creds.AccessKey, Sign(creds.SecretKey, c))
}

// ParseHeader splits an Authorization value into access key and signature.
func ParseHeader(value string) (accessKey, signature string, err error) {
	rest, ok := strings.CutPrefix(value, Scheme+" ")
	if !ok {
		return "", "", fmt.Errorf("authorization scheme is not %s", Scheme)
	}
	accessKey, signature, ok = strings.Cut(rest, ":")
	if !ok || accessKey == "" || signature == "" {
		return "", "", fmt.Errorf("malformed authorization value")
	}
	return accessKey, signature, nil
}

// Verify reports whether value is the Authorization header creds would produce for c.
func Verify(creds Credentials, c Canonical, value string) bool {
	accessKey, signature, err := ParseHeader(value)
	if err != nil || accessKey != creds.AccessKey {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(Sign(creds.SecretKey, c)))
}
