// Package console contains the Datastar SSE handlers behind the upload and
// WMS pages.
package console

import (
	"context"
	"html"
	"log/slog"
	"mime/multipart"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-ingest/internal/backend"
	"github.com/joeblew999/plat-ingest/internal/humastar"
	"github.com/joeblew999/plat-ingest/internal/service"
	"github.com/joeblew999/plat-ingest/internal/templates"
	"github.com/joeblew999/plat-ingest/internal/ui"
)

// UploadHandler handles the upload form.
type UploadHandler struct {
	humastar.Handler
	uploads *service.UploadService
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploads *service.UploadService, renderer *templates.Renderer) *UploadHandler {
	return &UploadHandler{
		Handler: humastar.Handler{Renderer: renderer},
		uploads: uploads,
	}
}

func (h *UploadHandler) RegisterRoutes(api huma.API) {
	huma.Post(api, ui.UploadRoute, h.Submit, huma.OperationTags("console"),
		func(o *huma.Operation) {
			o.MaxBodyBytes = MaxUploadBytes
			o.BodyReadTimeout = -1
		},
	)
}

// MaxUploadBytes bounds one archive upload.
const MaxUploadBytes = 1 << 30

type UploadSubmitInput struct {
	RawBody multipart.Form
}

// Submit forwards the selected archive to the backend. On success the three
// result fields are filled and the success panel replaces the form; on any
// failure the user gets an alert and the form is left as it was.
func (h *UploadHandler) Submit(ctx context.Context, input *UploadSubmitInput) (*huma.StreamResponse, error) {
	return h.Stream(func(sse humastar.SSE) {
		files := input.RawBody.File[backend.UploadField]
		if len(files) == 0 || files[0].Filename == "" {
			slog.Warn("upload submitted without a file")
			sse.Alert(ui.UploadFailedAlert)
			return
		}

		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			slog.Error("open uploaded file", "file", fh.Filename, "err", err)
			sse.ConsoleError(err)
			sse.Alert(ui.UploadFailedAlert)
			return
		}
		defer f.Close()

		res, err := h.uploads.Upload(ctx, backend.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
		if err != nil {
			slog.Error("upload failed", "file", fh.Filename, "err", err)
			sse.ConsoleError(err)
			sse.Alert(ui.UploadFailedAlert)
			return
		}

		slog.Info("upload stored", "file", res.Filename, "content_type", res.ContentType)
		sse.Patch(html.EscapeString(res.Filename), ui.Selector(ui.SuccessFilenameID))
		sse.Patch(html.EscapeString(res.ContentType), ui.Selector(ui.SuccessContentTypeID))
		sse.Patch(html.EscapeString(res.Command), ui.Selector(ui.SuccessCommandID))
		sse.Signals(map[string]any{ui.SignalUploaded: true})
	}), nil
}
