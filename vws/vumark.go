package vws

import (
	"context"
	"fmt"
	"net/http"
)

// VuMarkFormat is the Accept value selecting the generated instance's format.
type VuMarkFormat string

const (
	VuMarkPNG VuMarkFormat = "image/png"
	VuMarkSVG VuMarkFormat = "image/svg+xml"
	VuMarkPDF VuMarkFormat = "application/pdf"
)

// Valid reports whether f is a supported format.
func (f VuMarkFormat) Valid() bool {
	switch f {
	case VuMarkPNG, VuMarkSVG, VuMarkPDF:
		return true
	}
	return false
}

// GenerateVuMarkInstance renders an instance of a VuMark template target
// and returns the raw image bytes in the requested format.
func (c *Client) GenerateVuMarkInstance(ctx context.Context, targetID, instanceID string, format VuMarkFormat) ([]byte, error) {
	const op = "generate vumark instance"
	if err := validateTargetID(op, targetID); err != nil {
		return nil, err
	}
	if instanceID == "" {
		return nil, invalid(op, "instance_id", "must not be empty")
	}
	if !format.Valid() {
		return nil, invalid(op, "accept", fmt.Sprintf("unsupported format %q", format))
	}

	extra := http.Header{}
	extra.Set("Accept", string(format))
	payload := map[string]string{"instance_id": instanceID}
	resp, err := c.conn.sendJSON(ctx, op, http.MethodPost, "/targets/"+targetID+"/instances", payload, extra)
	if err != nil {
		return nil, err
	}
	if err := vumarkInterpreter.check(op, resp, ""); err != nil {
		return nil, err
	}
	return resp.Body, nil
}
