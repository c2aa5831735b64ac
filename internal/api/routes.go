// Package api defines the JSON Huma API routes and handlers.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-ingest/internal/service"
)

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type ActivityInput struct {
	Limit int `query:"limit" default:"50" minimum:"1" maximum:"500" doc:"Maximum number of rows"`
}

type ActivityOutput struct {
	Body []service.Activity
}

// APIHandler holds the REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	activity *service.ActivityService
}

func NewAPIHandler(activity *service.ActivityService) *APIHandler {
	return &APIHandler{activity: activity}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
}

// RegisterActivity registers the activity ledger routes.
func (h *APIHandler) RegisterActivity(api huma.API) {
	huma.Get(api, "/api/v1/activity", h.GetActivity, huma.OperationTags("activity"))
}

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetActivity(ctx context.Context, input *ActivityInput) (*ActivityOutput, error) {
	if h.activity == nil {
		return &ActivityOutput{Body: []service.Activity{}}, nil
	}
	rows, err := h.activity.Recent(ctx, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("load activity", err)
	}
	return &ActivityOutput{Body: rows}, nil
}
