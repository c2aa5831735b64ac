// Package service contains the business logic behind the upload and WMS
// pages: forwarding to the backend, layer card bookkeeping and the
// activity ledger.
package service

import (
	"context"
	"time"

	"github.com/joeblew999/plat-ingest/internal/backend"
)

// Activity kinds.
const (
	KindUpload       = "upload"
	KindCapabilities = "wms-capabilities"
	KindSave         = "wms-save"
)

// Activity outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Activity is one ledger row: an upload or WMS request the service made
// on behalf of a user and how it ended.
type Activity struct {
	ID        string    `json:"id" doc:"Activity identifier"`
	Kind      string    `json:"kind" enum:"upload,wms-capabilities,wms-save" doc:"What was submitted"`
	Subject   string    `json:"subject" doc:"File name, WMS URL or layer name" example:"roads"`
	Outcome   string    `json:"outcome" enum:"success,error" doc:"How the request ended"`
	Message   string    `json:"message,omitempty" doc:"Result or error message"`
	CreatedAt time.Time `json:"createdAt" doc:"When the request finished"`
}

// Ledger stores activity rows.
type Ledger interface {
	Record(ctx context.Context, a Activity) error
	Recent(ctx context.Context, limit int) ([]Activity, error)
}

// Uploader forwards archives to the backend.
type Uploader interface {
	Upload(ctx context.Context, f backend.File) (backend.UploadResult, error)
}

// WMSBackend lists WMS layers and stores layer descriptions.
type WMSBackend interface {
	Capabilities(ctx context.Context, wmsURL string) ([]backend.Layer, error)
	SaveLayer(ctx context.Context, in backend.SaveRequest) (backend.SaveResult, error)
}
