package vws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// bodyMarker maps a plain text fragment in an error body to a kind.
type bodyMarker struct {
	text string
	kind Kind
}

// interpreter converts raw responses into a decoded value or a classified
// error. Each API surface has its own result-code table.
type interpreter struct {
	codes   map[string]Kind
	markers []bodyMarker
}

var (
	managementInterpreter = interpreter{
		codes:   managementResultCodes,
		markers: []bodyMarker{{text: oopsMarker, kind: KindOopsAnErrorOccurredPossiblyBadName}},
	}
	vumarkInterpreter = interpreter{
		codes:   vumarkResultCodes,
		markers: []bodyMarker{{text: oopsMarker, kind: KindOopsAnErrorOccurredPossiblyBadName}},
	}
	cloudRecoInterpreter = interpreter{
		codes:   cloudRecoResultCodes,
		markers: []bodyMarker{{text: integerRangeMarker, kind: KindMaxNumResultsOutOfRange}},
	}
)

// check classifies resp. It returns nil when the status is 2xx and, if
// successCode is non-empty, the body carries that result code.
//
// Non-2xx statuses are tested in a fixed order: 413, 429, 5xx, then the
// result-code table, then the body markers.
func (in interpreter) check(op string, resp *Response, successCode string) error {
	status := resp.StatusCode
	switch {
	case status >= 200 && status < 300:
		if successCode == "" {
			return nil
		}
		view, err := resp.JSON()
		if err != nil {
			return newError(KindUnexpectedSuccessBody, op, resp, fmt.Errorf("decode body: %w", err))
		}
		code, _ := view["result_code"].(string)
		if code == successCode {
			return nil
		}
		if kind, ok := in.codes[code]; ok {
			return newError(kind, op, resp, nil)
		}
		return newError(KindUnexpectedSuccessBody, op, resp, fmt.Errorf("result_code %q, want %q", code, successCode))
	case status == http.StatusRequestEntityTooLarge:
		return newError(KindRequestEntityTooLarge, op, resp, nil)
	case status == http.StatusTooManyRequests:
		return newError(KindTooManyRequests, op, resp, nil)
	case status >= 500:
		return newError(KindServerError, op, resp, nil)
	}

	if code, ok := resp.ResultCode(); ok {
		if kind, known := in.codes[code]; known {
			return newError(kind, op, resp, nil)
		}
	}
	text := resp.Text()
	for _, m := range in.markers {
		if strings.Contains(text, m.text) {
			return newError(m.kind, op, resp, nil)
		}
	}
	return newError(KindUnknownVWSError, op, resp, nil)
}

// decode runs check and then unmarshals the body into dest. A body that does
// not fit dest is an UnexpectedSuccessBody.
func (in interpreter) decode(op string, resp *Response, successCode string, dest any) error {
	if err := in.check(op, resp, successCode); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, dest); err != nil {
		return newError(KindUnexpectedSuccessBody, op, resp, fmt.Errorf("decode body: %w", err))
	}
	return nil
}

// malformed reports a success body missing a required field.
func malformed(op string, resp *Response, field string) error {
	return newError(KindUnexpectedSuccessBody, op, resp, fmt.Errorf("missing or invalid %s", field))
}
