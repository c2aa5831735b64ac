// Package backend is the HTTP client for the ingest backend: the ZIP upload
// endpoint and the two WMS endpoints.
package backend

import (
	"io"

	"github.com/paulmach/orb"
)

// StatusSuccess is the only save status treated as success.
const StatusSuccess = "success"

// UploadField is the multipart field the backend reads the archive from.
const UploadField = "zipfile"

// File is an archive to forward to the backend.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadResult is the backend's summary of a stored archive. Displayed verbatim.
type UploadResult struct {
	Status      string `json:"status,omitempty" doc:"Backend status"`
	Filename    string `json:"filename" doc:"Stored file name" example:"tileset_20250101_120000.zip"`
	ContentType string `json:"content_type" doc:"Detected archive content" example:"pointcloud"`
	Command     string `json:"command" doc:"Collector command launched by the backend"`
}

// Layer is one entry of a capabilities response.
type Layer struct {
	Name     string    `json:"name" doc:"Layer name, unique within a capabilities response" example:"roads"`
	Title    string    `json:"title" doc:"Human readable title" example:"Roads"`
	Abstract string    `json:"abstract,omitempty" doc:"Layer abstract"`
	BBox     []float64 `json:"bbox,omitempty" doc:"WGS84 bounding box: minx, miny, maxx, maxy"`
}

// Bound returns the layer's bounding box when the backend reported a valid one.
func (l Layer) Bound() (orb.Bound, bool) {
	if len(l.BBox) != 4 {
		return orb.Bound{}, false
	}
	b := orb.Bound{
		Min: orb.Point{l.BBox[0], l.BBox[1]},
		Max: orb.Point{l.BBox[2], l.BBox[3]},
	}
	if b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() {
		return orb.Bound{}, false
	}
	return b, true
}

// CapabilitiesRequest is the body of POST /wms/capabilities.
type CapabilitiesRequest struct {
	URL string `json:"url"`
}

// CapabilitiesResponse is the body returned by POST /wms/capabilities.
// Layers is a pointer so a body without the key is told apart from an empty list.
type CapabilitiesResponse struct {
	Layers *[]Layer `json:"layers"`
}

// SaveRequest is the body of POST /wms/save.
type SaveRequest struct {
	LayerName   string `json:"layer_name"`
	Description string `json:"description"`
	WMSURL      string `json:"wms_url"`
}

// SaveResult is the body returned by POST /wms/save.
type SaveResult struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	WMSInfo map[string]any `json:"wms_info,omitempty"`
}
