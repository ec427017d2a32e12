package vws

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonResponse(status int, body string) *Response {
	return &Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(body),
		Method:     http.MethodGet,
		URL:        "https://vws.example/targets/abc123",
	}
}

func textResponse(status int, body string) *Response {
	return &Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       []byte(body),
		Method:     http.MethodGet,
		URL:        "https://vws.example/targets/abc123",
	}
}

func requireKind(t *testing.T, err error, want Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var vErr *Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, want, vErr.Kind, "error: %v", err)
	assert.True(t, errors.Is(err, want))
	require.NotNil(t, vErr.Response)
	return vErr
}

func TestManagementResultCodesMapToKinds(t *testing.T) {
	for code, want := range managementResultCodes {
		t.Run(code, func(t *testing.T) {
			resp := jsonResponse(http.StatusForbidden, `{"result_code":"`+code+`"}`)
			vErr := requireKind(t, managementInterpreter.check("op", resp, ResultSuccess), want)
			assert.Equal(t, http.StatusForbidden, vErr.Response.StatusCode)
		})
	}
}

func TestVuMarkResultCodesMapToKinds(t *testing.T) {
	for code, want := range vumarkResultCodes {
		t.Run(code, func(t *testing.T) {
			resp := jsonResponse(http.StatusBadRequest, `{"result_code":"`+code+`"}`)
			requireKind(t, vumarkInterpreter.check("op", resp, ""), want)
		})
	}
}

func TestCloudRecoResultCodesMapToKinds(t *testing.T) {
	for code, want := range cloudRecoResultCodes {
		t.Run(code, func(t *testing.T) {
			resp := jsonResponse(http.StatusUnauthorized, `{"result_code":"`+code+`"}`)
			requireKind(t, cloudRecoInterpreter.check("op", resp, ResultSuccess), want)
		})
	}
}

func TestUnknownOrMissingResultCode(t *testing.T) {
	cases := map[string]*Response{
		"unknown code":  jsonResponse(http.StatusBadRequest, `{"result_code":"SomethingNew"}`),
		"missing code":  jsonResponse(http.StatusBadRequest, `{"transaction_id":"x"}`),
		"non json":      textResponse(http.StatusBadRequest, "<html>nope</html>"),
		"empty body":    textResponse(http.StatusNotFound, ""),
		"non string":    jsonResponse(http.StatusBadRequest, `{"result_code":42}`),
		"json array":    jsonResponse(http.StatusBadRequest, `[1,2,3]`),
		"redirect 3xx":  textResponse(http.StatusFound, ""),
		"query on mgmt": jsonResponse(http.StatusBadRequest, `{"result_code":"InactiveProject"}`),
	}
	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			vErr := requireKind(t, managementInterpreter.check("op", resp, ResultSuccess), KindUnknownVWSError)
			assert.Equal(t, string(resp.Body), vErr.Response.Text())
		})
	}
}

func TestStatusPrecedence(t *testing.T) {
	cases := []struct {
		name string
		resp *Response
		want Kind
	}{
		{"413 ignores body", jsonResponse(http.StatusRequestEntityTooLarge, `{"result_code":"UnknownTarget"}`), KindRequestEntityTooLarge},
		{"413 html", textResponse(http.StatusRequestEntityTooLarge, "<html>too big</html>"), KindRequestEntityTooLarge},
		{"429", jsonResponse(http.StatusTooManyRequests, `{"result_code":"Fail"}`), KindTooManyRequests},
		{"500 non json", textResponse(http.StatusInternalServerError, "boom"), KindServerError},
		{"503 with code", jsonResponse(http.StatusServiceUnavailable, `{"result_code":"UnknownTarget"}`), KindServerError},
		{"oops body", textResponse(http.StatusBadRequest, "<h1>Oops, an error occurred</h1>"), KindOopsAnErrorOccurredPossiblyBadName},
		{"code beats oops", jsonResponse(http.StatusBadRequest, `{"result_code":"Fail","detail":"Oops, an error occurred"}`), KindFail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			requireKind(t, managementInterpreter.check("op", tc.resp, ResultSuccess), tc.want)
		})
	}
}

func TestCloudRecoIntegerOutOfRange(t *testing.T) {
	resp := textResponse(http.StatusBadRequest, "Integer out of range (51) in multipart/form-data request part max_num_results")
	requireKind(t, cloudRecoInterpreter.check("query", resp, ResultSuccess), KindMaxNumResultsOutOfRange)
}

func TestSuccessBodies(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		resp := jsonResponse(http.StatusOK, `{"result_code":"Success"}`)
		assert.NoError(t, managementInterpreter.check("op", resp, ResultSuccess))
	})
	t.Run("no code expected", func(t *testing.T) {
		resp := &Response{StatusCode: http.StatusOK, Body: []byte("\x89PNG")}
		assert.NoError(t, vumarkInterpreter.check("op", resp, ""))
	})
	t.Run("malformed json", func(t *testing.T) {
		resp := jsonResponse(http.StatusOK, `{"result_code":`)
		vErr := requireKind(t, managementInterpreter.check("op", resp, ResultSuccess), KindUnexpectedSuccessBody)
		assert.Error(t, errors.Unwrap(vErr))
	})
	t.Run("wrong success code", func(t *testing.T) {
		resp := jsonResponse(http.StatusCreated, `{"result_code":"Success"}`)
		requireKind(t, managementInterpreter.check("op", resp, ResultTargetCreated), KindUnexpectedSuccessBody)
	})
	t.Run("known error code on 2xx", func(t *testing.T) {
		resp := jsonResponse(http.StatusOK, `{"result_code":"TargetStatusProcessing"}`)
		requireKind(t, managementInterpreter.check("op", resp, ResultSuccess), KindTargetStatusProcessing)
	})
	t.Run("decode shape mismatch", func(t *testing.T) {
		resp := jsonResponse(http.StatusOK, `{"result_code":"Success","results":"nope"}`)
		var out struct {
			Results []string `json:"results"`
		}
		requireKind(t, managementInterpreter.decode("op", resp, ResultSuccess, &out), KindUnexpectedSuccessBody)
	})
}
