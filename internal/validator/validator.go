package validator

import (
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/meterwatch/meter-reading-api/internal/db"
)

// UploadRequest is the body of POST /upload.
type UploadRequest struct {
	Image           string `json:"image"`
	CustomerCode    string `json:"customer_code"`
	MeasureDatetime string `json:"measure_datetime"`
	MeasureType     string `json:"measure_type"`
}

// ConfirmRequest is the body of PATCH /confirm. ConfirmedValue is a pointer
// so a missing field can be told apart from zero.
type ConfirmRequest struct {
	MeasureUUID    string   `json:"measure_uuid"`
	ConfirmedValue *float64 `json:"confirmed_value"`
}

// datetimeLayouts are the ISO-8601 shapes accepted for measure_datetime.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Validator checks request payloads before any business logic runs. It is
// pure and never touches the store or the recognition service.
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateUpload validates an upload request, returning the decoded image
// bytes and the parsed measure datetime. The first violation is returned as
// an error with a human-readable message.
func (v *Validator) ValidateUpload(req UploadRequest) ([]byte, time.Time, error) {
	if req.Image == "" {
		return nil, time.Time{}, fmt.Errorf(`"image" is required`)
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf(`"image" must be a valid base64 string`)
	}

	if req.CustomerCode == "" {
		return nil, time.Time{}, fmt.Errorf(`"customer_code" is required`)
	}

	if req.MeasureDatetime == "" {
		return nil, time.Time{}, fmt.Errorf(`"measure_datetime" is required`)
	}

	measureTime, err := parseDatetime(req.MeasureDatetime)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf(`"measure_datetime" must be in ISO 8601 date format`)
	}

	if req.MeasureType == "" {
		return nil, time.Time{}, fmt.Errorf(`"measure_type" is required`)
	}

	if !db.IsValidType(req.MeasureType) {
		return nil, time.Time{}, fmt.Errorf(`"measure_type" must be one of [WATER, GAS]`)
	}

	return image, measureTime, nil
}

// ValidateConfirm validates a confirm request, returning the confirmed
// integer value.
func (v *Validator) ValidateConfirm(req ConfirmRequest) (int64, error) {
	if req.MeasureUUID == "" {
		return 0, fmt.Errorf(`"measure_uuid" is required`)
	}

	if req.ConfirmedValue == nil {
		return 0, fmt.Errorf(`"confirmed_value" is required`)
	}

	value := *req.ConfirmedValue
	if value != math.Trunc(value) {
		return 0, fmt.Errorf(`"confirmed_value" must be an integer`)
	}

	// Whole numbers beyond int64 would overflow the conversion below.
	if value < math.MinInt64 || value >= math.MaxInt64 {
		return 0, fmt.Errorf(`"confirmed_value" must be an integer`)
	}

	return int64(value), nil
}

func parseDatetime(dateStr string) (time.Time, error) {
	var lastErr error
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, dateStr)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}

	return time.Time{}, fmt.Errorf("failed to parse datetime '%s': %w", dateStr, lastErr)
}
