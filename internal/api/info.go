package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

type InfoHandler struct {
	backendURL string
	dataDir    string
	dbOK       bool
}

func NewInfoHandler(backendURL, dataDir string, dbOK bool) *InfoHandler {
	return &InfoHandler{backendURL: backendURL, dataDir: dataDir, dbOK: dbOK}
}

func (h *InfoHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	Backend  string   `json:"backend" doc:"Ingest backend base URL"`
	DataDir  string   `json:"data_dir,omitempty" doc:"Data directory path"`
	DB       bool     `json:"db" doc:"Whether the activity ledger is stored in DuckDB"`
	Features []string `json:"features" doc:"Available features"`
}

func (h *InfoHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "plat-ingest",
		Version:  "0.1.0",
		Backend:  h.backendURL,
		DataDir:  h.dataDir,
		DB:       h.dbOK,
		Features: []string{"upload", "wms", "activity"},
	}}, nil
}
