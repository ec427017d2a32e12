package vws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindNamesAreComplete(t *testing.T) {
	for k := KindUnknown; k <= KindUnknownTarget; k++ {
		_, ok := kindNames[k]
		assert.True(t, ok, "kind %d has no name", int(k))
	}
	assert.Equal(t, "Kind(999)", Kind(999).String())
	assert.Equal(t, "UnknownTarget", KindUnknownTarget.Error())
}

func TestKindOfAcrossTypes(t *testing.T) {
	resp := jsonResponse(http.StatusNotFound, `{"result_code":"UnknownTarget"}`)
	cases := []struct {
		err  error
		want Kind
	}{
		{newError(KindUnknownTarget, "get", resp, nil), KindUnknownTarget},
		{invalid("add", "name", "empty"), KindValidation},
		{&NetworkError{Kind: KindRequestTimeout, Err: context.DeadlineExceeded}, KindRequestTimeout},
		{&TargetProcessingTimeoutError{TargetID: "x", LastStatus: StatusProcessing}, KindTargetProcessingTimeout},
		{fmt.Errorf("outer: %w", newError(KindServerError, "get", resp, nil)), KindServerError},
		{errors.New("plain"), KindUnknown},
		{nil, KindUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, KindOf(tc.err), "%v", tc.err)
		if tc.err != nil && tc.want != KindUnknown {
			assert.ErrorIs(t, tc.err, tc.want)
		}
	}
}

func TestErrorIsDoesNotCrossKinds(t *testing.T) {
	err := newError(KindUnknownTarget, "get", jsonResponse(http.StatusNotFound, `{}`), nil)
	assert.NotErrorIs(t, err, KindServerError)
	assert.NotErrorIs(t, invalid("add", "width", "negative"), KindUnknownTarget)
}

func TestResponseOf(t *testing.T) {
	resp := jsonResponse(http.StatusBadRequest, `{"result_code":"UnknownTarget"}`)
	wrapped := fmt.Errorf("delete: %w", newError(KindUnknownTarget, "delete target", resp, nil))

	got, ok := ResponseOf(wrapped)
	require.True(t, ok)
	assert.Same(t, resp, got)

	_, ok = ResponseOf(invalid("add", "name", "empty"))
	assert.False(t, ok)
}

func TestErrorTargetID(t *testing.T) {
	cases := map[string]string{
		"https://vws.example/targets/abc123":           "abc123",
		"https://vws.example/summary/abc123":           "abc123",
		"https://vws.example/targets/abc123/instances": "abc123",
		"https://vws.example/targets":                  "",
	}
	for raw, want := range cases {
		err := &Error{Kind: KindUnknownTarget, Response: &Response{URL: raw}}
		assert.Equal(t, want, err.TargetID(), raw)
	}
}

func TestErrorTargetIDIgnoresBasePrefix(t *testing.T) {
	err := &Error{Kind: KindUnknownTarget, Response: &Response{
		URL:     "https://proxy.example/prefix/targets/abc123",
		APIPath: "/targets/abc123",
	}}
	assert.Equal(t, "abc123", err.TargetID())
}

func TestErrorTargetName(t *testing.T) {
	err := &Error{Kind: KindTargetNameExist, Response: &Response{
		URL:         "https://vws.example/targets",
		RequestBody: []byte(`{"name":"widget","width":1}`),
	}}
	assert.Equal(t, "widget", err.TargetName())

	err.Response.RequestBody = nil
	assert.Empty(t, err.TargetName())
}

func TestErrorMessages(t *testing.T) {
	resp := jsonResponse(http.StatusNotFound, `{"result_code":"UnknownTarget"}`)
	assert.Equal(t, "vws: delete target: UnknownTarget (status 404)", newError(KindUnknownTarget, "delete target", resp, nil).Error())
	assert.Equal(t, "vws: add target: invalid width: must not be negative", invalid("add target", "width", "must not be negative").Error())

	netErr := &NetworkError{Kind: KindRequestTimeout, Op: "list targets", Host: "vws.example", Budget: 30 * time.Second, Err: context.DeadlineExceeded}
	assert.Contains(t, netErr.Error(), "within 30s")
	assert.True(t, netErr.Timeout())

	waitErr := &TargetProcessingTimeoutError{TargetID: "abc", LastStatus: StatusProcessing, Attempts: 3, Elapsed: 1500 * time.Millisecond}
	assert.Equal(t, "vws: wait for target abc: still processing after 3 polls (1.5s)", waitErr.Error())
}
