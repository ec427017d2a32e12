package vws

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// IncludeTargetData selects which matches carry target data.
type IncludeTargetData string

const (
	IncludeTop  IncludeTargetData = "top"
	IncludeNone IncludeTargetData = "none"
	IncludeAll  IncludeTargetData = "all"
)

// Valid reports whether v is one of the three accepted values.
func (v IncludeTargetData) Valid() bool {
	switch v {
	case IncludeTop, IncludeNone, IncludeAll:
		return true
	}
	return false
}

// Bounds and default for QueryOptions.MaxNumResults.
const (
	MinNumResults        = 1
	MaxNumResults        = 50
	DefaultMaxNumResults = 1
)

// QueryOptions tunes a query. The zero value asks for one match with target
// data for the top match.
type QueryOptions struct {
	// MaxNumResults is between 1 and 50. Zero means DefaultMaxNumResults.
	MaxNumResults int
	// IncludeTargetData defaults to IncludeTop.
	IncludeTargetData IncludeTargetData
}

func (o QueryOptions) resolve(op string) (QueryOptions, error) {
	if o.MaxNumResults == 0 {
		o.MaxNumResults = DefaultMaxNumResults
	}
	if o.MaxNumResults < MinNumResults || o.MaxNumResults > MaxNumResults {
		return o, invalid(op, "max_num_results", fmt.Sprintf("must be between %d and %d, got %d", MinNumResults, MaxNumResults, o.MaxNumResults))
	}
	if o.IncludeTargetData == "" {
		o.IncludeTargetData = IncludeTop
	}
	if !o.IncludeTargetData.Valid() {
		return o, invalid(op, "include_target_data", fmt.Sprintf("must be top, none or all, got %q", o.IncludeTargetData))
	}
	return o, nil
}

// CloudRecoClient queries a database with an image.
type CloudRecoClient struct {
	conn *conn
}

// NewCloudRecoClient returns a query client for the client key pair in cfg.
func NewCloudRecoClient(cfg Config) (*CloudRecoClient, error) {
	c, err := newConn(cfg, DefaultCloudRecoURL, "cloud_reco_client")
	if err != nil {
		return nil, err
	}
	return &CloudRecoClient{conn: c}, nil
}

type queryResultWire struct {
	TargetID   string `json:"target_id"`
	TargetData *struct {
		Name                string  `json:"name"`
		ApplicationMetadata *string `json:"application_metadata"`
		TargetTimestamp     int64   `json:"target_timestamp"`
		TrackingRating      *int    `json:"tracking_rating"`
	} `json:"target_data"`
}

// Query sends image and returns the matching targets, best match first. An
// image that matches nothing yields an empty slice.
func (c *CloudRecoClient) Query(ctx context.Context, image io.Reader, opts QueryOptions) ([]QueryResult, error) {
	const op = "query"
	opts, err := opts.resolve(op)
	if err != nil {
		return nil, err
	}
	if image == nil {
		return nil, invalid(op, "image", "must not be nil")
	}
	data, err := io.ReadAll(image)
	if err != nil {
		return nil, fmt.Errorf("%s: read image: %w", op, err)
	}

	req, err := c.conn.builder.buildMultipart(http.MethodPost, "/v1/query",
		[][2]string{
			{"max_num_results", strconv.Itoa(opts.MaxNumResults)},
			{"include_target_data", string(opts.IncludeTargetData)},
		},
		[]formFile{{field: "image", filename: "image.jpeg", contentType: "image/jpeg", data: data}},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	resp, err := c.conn.send(ctx, op, req)
	if err != nil {
		return nil, err
	}

	var out struct {
		Results *[]queryResultWire `json:"results"`
	}
	if err := cloudRecoInterpreter.decode(op, resp, ResultSuccess, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		return nil, malformed(op, resp, "results")
	}

	results := make([]QueryResult, 0, len(*out.Results))
	for _, item := range *out.Results {
		if item.TargetID == "" {
			return nil, malformed(op, resp, "results[].target_id")
		}
		result := QueryResult{TargetID: item.TargetID}
		if item.TargetData != nil {
			td := &TargetData{
				Name:            item.TargetData.Name,
				TargetTimestamp: time.Unix(item.TargetData.TargetTimestamp, 0).UTC(),
				TrackingRating:  item.TargetData.TrackingRating,
			}
			if item.TargetData.ApplicationMetadata != nil {
				meta, err := base64.StdEncoding.DecodeString(*item.TargetData.ApplicationMetadata)
				if err != nil {
					return nil, newError(KindUnexpectedSuccessBody, op, resp, fmt.Errorf("decode application_metadata: %w", err))
				}
				td.ApplicationMetadata = meta
			}
			result.TargetData = td
		}
		results = append(results, result)
	}
	return results, nil
}
