package vws

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// AddTargetRequest describes a new target. Image and ApplicationMetadata are
// sent base64 encoded.
type AddTargetRequest struct {
	Name  string
	Width float64
	Image io.Reader
	// Active sets active_flag.
	Active bool
	// ApplicationMetadata is optional. Nil sends null.
	ApplicationMetadata []byte
}

// UpdateTargetRequest lists the fields to change. Nil fields are left out of
// the request and keep their current value.
type UpdateTargetRequest struct {
	Name                *string
	Width               *float64
	Image               io.Reader
	Active              *bool
	ApplicationMetadata []byte
}

type addTargetBody struct {
	Name                string  `json:"name"`
	Width               float64 `json:"width"`
	Image               string  `json:"image"`
	ActiveFlag          bool    `json:"active_flag"`
	ApplicationMetadata *string `json:"application_metadata"`
}

func validateName(op, name string) error {
	if name == "" {
		return invalid(op, "name", "must not be empty")
	}
	return nil
}

func validateWidth(op string, width float64) error {
	if math.IsNaN(width) || math.IsInf(width, 0) {
		return invalid(op, "width", "must be a finite number")
	}
	if width < 0 {
		return invalid(op, "width", "must not be negative")
	}
	return nil
}

func readImage(op string, r io.Reader) (string, error) {
	if r == nil {
		return "", invalid(op, "image", "must not be nil")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%s: read image: %w", op, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// AddTarget uploads a new target and returns its id. The target starts in
// the processing state.
func (c *Client) AddTarget(ctx context.Context, in AddTargetRequest) (string, error) {
	const op = "add target"
	if err := validateName(op, in.Name); err != nil {
		return "", err
	}
	if err := validateWidth(op, in.Width); err != nil {
		return "", err
	}
	image, err := readImage(op, in.Image)
	if err != nil {
		return "", err
	}
	body := addTargetBody{
		Name:       in.Name,
		Width:      in.Width,
		Image:      image,
		ActiveFlag: in.Active,
	}
	if in.ApplicationMetadata != nil {
		encoded := base64.StdEncoding.EncodeToString(in.ApplicationMetadata)
		body.ApplicationMetadata = &encoded
	}

	resp, err := c.conn.sendJSON(ctx, op, http.MethodPost, "/targets", body, nil)
	if err != nil {
		return "", err
	}
	var out struct {
		TargetID string `json:"target_id"`
	}
	if err := managementInterpreter.decode(op, resp, ResultTargetCreated, &out); err != nil {
		return "", err
	}
	if out.TargetID == "" {
		return "", malformed(op, resp, "target_id")
	}
	return out.TargetID, nil
}

// GetTargetRecord returns a target's processing status and record.
func (c *Client) GetTargetRecord(ctx context.Context, targetID string) (*TargetStatusAndRecord, error) {
	const op = "get target record"
	if err := validateTargetID(op, targetID); err != nil {
		return nil, err
	}
	resp, err := c.conn.get(ctx, op, "/targets/"+targetID, nil)
	if err != nil {
		return nil, err
	}
	var out TargetStatusAndRecord
	if err := managementInterpreter.decode(op, resp, ResultSuccess, &out); err != nil {
		return nil, err
	}
	if !out.Status.Valid() {
		return nil, malformed(op, resp, "status")
	}
	if out.TargetRecord.TargetID == "" {
		return nil, malformed(op, resp, "target_record.target_id")
	}
	return &out, nil
}

// UpdateTarget changes the fields set in in. Fails with TargetStatusProcessing
// while the target is still processing.
func (c *Client) UpdateTarget(ctx context.Context, targetID string, in UpdateTargetRequest) error {
	const op = "update target"
	if err := validateTargetID(op, targetID); err != nil {
		return err
	}
	body := make(map[string]any, 5)
	if in.Name != nil {
		if err := validateName(op, *in.Name); err != nil {
			return err
		}
		body["name"] = *in.Name
	}
	if in.Width != nil {
		if err := validateWidth(op, *in.Width); err != nil {
			return err
		}
		body["width"] = *in.Width
	}
	if in.Image != nil {
		image, err := readImage(op, in.Image)
		if err != nil {
			return err
		}
		body["image"] = image
	}
	if in.Active != nil {
		body["active_flag"] = *in.Active
	}
	if in.ApplicationMetadata != nil {
		body["application_metadata"] = base64.StdEncoding.EncodeToString(in.ApplicationMetadata)
	}

	resp, err := c.conn.sendJSON(ctx, op, http.MethodPut, "/targets/"+targetID, body, nil)
	if err != nil {
		return err
	}
	return managementInterpreter.check(op, resp, ResultSuccess)
}

// DeleteTarget removes a target. Fails with TargetStatusProcessing while the
// target is still processing.
func (c *Client) DeleteTarget(ctx context.Context, targetID string) error {
	const op = "delete target"
	if err := validateTargetID(op, targetID); err != nil {
		return err
	}
	resp, err := c.conn.delete(ctx, op, "/targets/"+targetID)
	if err != nil {
		return err
	}
	return managementInterpreter.check(op, resp, ResultSuccess)
}

// ListTargets returns the ids of every target in the database.
func (c *Client) ListTargets(ctx context.Context) ([]string, error) {
	const op = "list targets"
	resp, err := c.conn.get(ctx, op, "/targets", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Results *[]string `json:"results"`
	}
	if err := managementInterpreter.decode(op, resp, ResultSuccess, &out); err != nil {
		return nil, err
	}
	if out.Results == nil {
		return nil, malformed(op, resp, "results")
	}
	return *out.Results, nil
}

// GetDatabaseSummaryReport returns usage and quota figures for the database.
func (c *Client) GetDatabaseSummaryReport(ctx context.Context) (*DatabaseSummaryReport, error) {
	const op = "get database summary report"
	resp, err := c.conn.get(ctx, op, "/summary", nil)
	if err != nil {
		return nil, err
	}
	var out DatabaseSummaryReport
	if err := managementInterpreter.decode(op, resp, ResultSuccess, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type targetSummaryWire struct {
	Status             TargetStatus `json:"status"`
	DatabaseName       string       `json:"database_name"`
	TargetName         string       `json:"target_name"`
	UploadDate         string       `json:"upload_date"`
	ActiveFlag         bool         `json:"active_flag"`
	TrackingRating     int          `json:"tracking_rating"`
	TotalRecos         int          `json:"total_recos"`
	CurrentMonthRecos  int          `json:"current_month_recos"`
	PreviousMonthRecos int          `json:"previous_month_recos"`
}

// GetTargetSummaryReport returns usage figures for one target.
func (c *Client) GetTargetSummaryReport(ctx context.Context, targetID string) (*TargetSummaryReport, error) {
	const op = "get target summary report"
	if err := validateTargetID(op, targetID); err != nil {
		return nil, err
	}
	resp, err := c.conn.get(ctx, op, "/summary/"+targetID, nil)
	if err != nil {
		return nil, err
	}
	var wire targetSummaryWire
	if err := managementInterpreter.decode(op, resp, ResultSuccess, &wire); err != nil {
		return nil, err
	}
	if !wire.Status.Valid() {
		return nil, malformed(op, resp, "status")
	}
	uploaded, err := time.Parse(uploadDateLayout, wire.UploadDate)
	if err != nil {
		return nil, newError(KindUnexpectedSuccessBody, op, resp, fmt.Errorf("parse upload_date: %w", err))
	}
	return &TargetSummaryReport{
		Status:             wire.Status,
		DatabaseName:       wire.DatabaseName,
		TargetName:         wire.TargetName,
		UploadDate:         uploaded,
		ActiveFlag:         wire.ActiveFlag,
		TrackingRating:     wire.TrackingRating,
		TotalRecos:         wire.TotalRecos,
		CurrentMonthRecos:  wire.CurrentMonthRecos,
		PreviousMonthRecos: wire.PreviousMonthRecos,
	}, nil
}

// GetDuplicateTargets returns the ids of targets too similar to targetID.
func (c *Client) GetDuplicateTargets(ctx context.Context, targetID string) ([]string, error) {
	const op = "get duplicate targets"
	if err := validateTargetID(op, targetID); err != nil {
		return nil, err
	}
	resp, err := c.conn.get(ctx, op, "/duplicates/"+targetID, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		SimilarTargets *[]string `json:"similar_targets"`
	}
	if err := managementInterpreter.decode(op, resp, ResultSuccess, &out); err != nil {
		return nil, err
	}
	if out.SimilarTargets == nil {
		return nil, malformed(op, resp, "similar_targets")
	}
	return *out.SimilarTargets, nil
}
