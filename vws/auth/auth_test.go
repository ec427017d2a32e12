package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixedDate = "Sun, 22 Apr 2012 08:49:37 GMT"

func TestContentMD5_EmptyBody(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", ContentMD5(nil))
	assert.Equal(t, ContentMD5(nil), ContentMD5([]byte{}))
}

func TestSign_KnownVectors(t *testing.T) {
	get := Canonical{
		Method:     "GET",
		ContentMD5: ContentMD5(nil),
		Date:       fixedDate,
		Path:       "/targets",
	}
	assert.Equal(t, "JVqH83FaRPlzHRhQLqnk5zKFXLQ=", Sign("my_secret", get))

	body := []byte(`{"name":"widget"}`)
	post := Canonical{
		Method:      "POST",
		ContentMD5:  ContentMD5(body),
		ContentType: "application/json",
		Date:        fixedDate,
		Path:        "/targets",
	}
	assert.Equal(t, "6d2525be29a767e5bf839d558bf203dd", post.ContentMD5)
	assert.Equal(t, "Z7IdZEf3xmAkb2Obd54wbejC5v0=", Sign("my_secret", post))
}

func TestSign_Deterministic(t *testing.T) {
	c := Canonical{Method: "PUT", ContentMD5: ContentMD5([]byte("x")), ContentType: "application/json", Date: fixedDate, Path: "/targets/abc"}
	first := Sign("secret", c)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Sign("secret", c))
	}
}

func TestSign_EveryFieldMatters(t *testing.T) {
	base := Canonical{Method: "POST", ContentMD5: ContentMD5([]byte("body")), ContentType: "application/json", Date: fixedDate, Path: "/targets"}
	want := Sign("secret", base)

	variants := map[string]Canonical{
		"method":       {Method: "PUT", ContentMD5: base.ContentMD5, ContentType: base.ContentType, Date: base.Date, Path: base.Path},
		"content md5":  {Method: base.Method, ContentMD5: ContentMD5([]byte("other")), ContentType: base.ContentType, Date: base.Date, Path: base.Path},
		"content type": {Method: base.Method, ContentMD5: base.ContentMD5, ContentType: "text/plain", Date: base.Date, Path: base.Path},
		"date":         {Method: base.Method, ContentMD5: base.ContentMD5, ContentType: base.ContentType, Date: "Mon, 23 Apr 2012 08:49:37 GMT", Path: base.Path},
		"path":         {Method: base.Method, ContentMD5: base.ContentMD5, ContentType: base.ContentType, Date: base.Date, Path: "/summary"},
	}
	for name, c := range variants {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, want, Sign("secret", c))
		})
	}
	assert.NotEqual(t, want, Sign("other-secret", base))
}

func TestHeader_FormatAndVerify(t *testing.T) {
	creds := Credentials{AccessKey: "access", SecretKey: "secret"}
	c := Canonical{Method: "GET", ContentMD5: ContentMD5(nil), Date: fixedDate, Path: "/summary"}

	value := Header(creds, c)
	assert.Equal(t, "VWS access:"+Sign("secret", c), value)
	assert.True(t, Verify(creds, c, value))
	assert.False(t, Verify(Credentials{AccessKey: "access", SecretKey: "wrong"}, c, value))
	assert.False(t, Verify(Credentials{AccessKey: "other", SecretKey: "secret"}, c, value))
	assert.False(t, Verify(creds, c, "Bearer token"))
}

func TestParseHeader_Malformed(t *testing.T) {
	for _, value := range []string{"", "VWS", "VWS nocolon", "VWS :sig", "VWS key:", "Basic a:b"} {
		_, _, err := ParseHeader(value)
		assert.Error(t, err, "value %q", value)
	}
	key, sig, err := ParseHeader("VWS key:c2ln")
	require.NoError(t, err)
	assert.Equal(t, "key", key)
	assert.Equal(t, "c2ln", sig)
}

func TestDate_RFC1123GMT(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2012, time.April, 22, 10, 49, 37, 0, loc)
	assert.Equal(t, fixedDate, Date(ts))
}

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, Credentials{AccessKey: "a", SecretKey: "s"}.Validate())
	assert.Error(t, Credentials{AccessKey: " ", SecretKey: "s"}.Validate())
	assert.Error(t, Credentials{AccessKey: "a"}.Validate())
}
