package estimate

import (
	"strconv"
	"strings"

	dErrors "gfe/pkg/domain-errors"
)

// Source of an estimate.
const (
	SourceBackend  = "backend"
	SourceFallback = "fallback"
)

// FallbackNote is shown with every synthesized estimate.
const FallbackNote = "Estimate based on standard pricing. Contact us for detailed quote."

// Request is the estimator form as submitted by the page.
type Request struct {
	WindowType    string `json:"windowType"`
	Brand         string `json:"brand"`
	Material      string `json:"material"`
	Width         string `json:"width,omitempty"`
	Height        string `json:"height,omitempty"`
	Quantity      string `json:"quantity,omitempty"`
	Location      string `json:"location,omitempty"`
	Notes         string `json:"notes,omitempty"`
	UploadedImage string `json:"uploadedImage,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
}

func (r *Request) Normalize() {
	r.WindowType = strings.TrimSpace(r.WindowType)
	r.Brand = strings.TrimSpace(r.Brand)
	r.Material = strings.TrimSpace(r.Material)
	r.Quantity = strings.TrimSpace(r.Quantity)
	if r.Quantity == "" {
		r.Quantity = "1"
	}
}

func (r *Request) Validate() error {
	if r.WindowType == "" || r.Brand == "" || r.Material == "" {
		return dErrors.New(dErrors.CodeValidation, "windowType, brand and material are required")
	}
	if n, err := strconv.Atoi(r.Quantity); err != nil || n < 1 {
		return dErrors.New(dErrors.CodeValidation, "quantity must be a positive integer")
	}
	return nil
}

// Units returns the quantity as a number. Unparseable quantities count as one.
func (r *Request) Units() int {
	n, err := strconv.Atoi(r.Quantity)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Result is an estimate. Degraded results are placeholders synthesized
// locally and must be presented as such.
type Result struct {
	UnitPrice    float64 `json:"unitPrice"`
	TotalPrice   float64 `json:"totalPrice"`
	LaborCost    float64 `json:"laborCost"`
	MaterialCost float64 `json:"materialCost"`
	Confidence   float64 `json:"confidence,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	Degraded     bool    `json:"degraded"`
	Source       string  `json:"source"`
}
