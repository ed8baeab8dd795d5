package db

import (
	"time"

	"github.com/google/uuid"
)

// Measure types accepted by the API.
const (
	TypeWater = "WATER"
	TypeGas   = "GAS"
)

// IsValidType reports whether t is one of the accepted measure types.
func IsValidType(t string) bool {
	return t == TypeWater || t == TypeGas
}

// Measure represents one utility-meter reading with its recognized (and
// possibly later confirmed) value.
type Measure struct {
	MeasureUUID     uuid.UUID `json:"measure_uuid"`
	ImageURL        string    `json:"image_url"`
	CustomerCode    string    `json:"customer_code"`
	MeasureValue    int64     `json:"measure_value"`
	MeasureDatetime time.Time `json:"measure_datetime"`
	MeasureType     string    `json:"measure_type"`
	HasConfirmed    bool      `json:"has_confirmed"`
}
