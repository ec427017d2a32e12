package vws

import "time"

// TargetStatus is the processing state of a target.
type TargetStatus string

const (
	StatusProcessing TargetStatus = "processing"
	StatusSuccess    TargetStatus = "success"
	StatusFailed     TargetStatus = "failed"
)

// Valid reports whether s is one of the three known states.
func (s TargetStatus) Valid() bool {
	switch s {
	case StatusProcessing, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether processing has finished, successfully or not.
func (s TargetStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// TargetRecord describes a single target.
type TargetRecord struct {
	TargetID   string  `json:"target_id"`
	ActiveFlag bool    `json:"active_flag"`
	Name       string  `json:"name"`
	Width      float64 `json:"width"`
	// TrackingRating ranges from -1 (not yet rated) to 5.
	TrackingRating int    `json:"tracking_rating"`
	RecoRating     string `json:"reco_rating"`
}

// TargetStatusAndRecord is the result of GetTargetRecord.
type TargetStatusAndRecord struct {
	Status       TargetStatus `json:"status"`
	TargetRecord TargetRecord `json:"target_record"`
}

// DatabaseSummaryReport describes the whole cloud database.
type DatabaseSummaryReport struct {
	ActiveImages       int    `json:"active_images"`
	CurrentMonthRecos  int    `json:"current_month_recos"`
	FailedImages       int    `json:"failed_images"`
	InactiveImages     int    `json:"inactive_images"`
	Name               string `json:"name"`
	PreviousMonthRecos int    `json:"previous_month_recos"`
	ProcessingImages   int    `json:"processing_images"`
	RecoThreshold      int    `json:"reco_threshold"`
	RequestQuota       int    `json:"request_quota"`
	RequestUsage       int    `json:"request_usage"`
	TargetQuota        int    `json:"target_quota"`
	TotalRecos         int    `json:"total_recos"`
}

// TargetSummaryReport describes a single target's usage.
type TargetSummaryReport struct {
	Status             TargetStatus `json:"status"`
	DatabaseName       string       `json:"database_name"`
	TargetName         string       `json:"target_name"`
	UploadDate         time.Time    `json:"upload_date"`
	ActiveFlag         bool         `json:"active_flag"`
	TrackingRating     int          `json:"tracking_rating"`
	TotalRecos         int          `json:"total_recos"`
	CurrentMonthRecos  int          `json:"current_month_recos"`
	PreviousMonthRecos int          `json:"previous_month_recos"`
}

// uploadDateLayout is the format of upload_date in target summaries.
const uploadDateLayout = "2006-01-02"

// TargetData is the optional per-match payload of a query result.
type TargetData struct {
	Name string `json:"name"`
	// ApplicationMetadata is the decoded metadata, nil when none was stored
	// or when it was not requested.
	ApplicationMetadata []byte    `json:"application_metadata"`
	TargetTimestamp     time.Time `json:"target_timestamp"`
	// TrackingRating is set only when the service includes it.
	TrackingRating *int `json:"tracking_rating,omitempty"`
}

// QueryResult is one match returned by CloudRecoClient.Query.
type QueryResult struct {
	TargetID string `json:"target_id"`
	// TargetData is nil when the query asked for no target data, or for the
	// top match only and this is not it.
	TargetData *TargetData `json:"target_data,omitempty"`
}
