package ui

import (
	"encoding/json"
	"fmt"
	"html/template"
)

// Routes of the SSE endpoints the pages post to.
const (
	UploadRoute       = "/ui/upload"
	CapabilitiesRoute = "/ui/wms/capabilities"
	ActivityRoute     = "/ui/activity"
)

// SaveRoute is the save endpoint of one layer card.
func SaveRoute(cardID string) string {
	return "/ui/wms/cards/" + cardID + "/save"
}

// UploadPage is the data of the upload page template.
type UploadPage struct {
	Signals     string
	Placeholder string
	Submit      template.JS
	Activity    template.JS
	DropZone    template.HTMLAttr
	FileInput   template.HTMLAttr
	FileLabel   template.HTMLAttr
}

// NewUploadPage builds the upload page with its initial signals.
func NewUploadPage() UploadPage {
	return UploadPage{
		Signals: mustJSON(map[string]any{
			SignalFileName:   "",
			SignalDropActive: false,
			SignalUploaded:   false,
		}),
		Placeholder: NoFileSelected,
		Submit:      PostForm(UploadRoute),
		Activity:    template.JS(fmt.Sprintf("@get('%s')", ActivityRoute)),
		DropZone:    DropZoneAttrs(),
		FileInput:   FileInputAttrs(),
		FileLabel:   FileLabelAttrs(),
	}
}

// WMSPage is the data of the WMS page template.
type WMSPage struct {
	Signals  string
	Submit   template.JS
	Activity template.JS
}

// NewWMSPage builds the WMS page for a board.
func NewWMSPage(boardID string) WMSPage {
	return WMSPage{
		Signals: mustJSON(map[string]any{
			SignalBoardID:       boardID,
			SignalWMSURL:        "",
			SignalLayersVisible: false,
			SignalCards:         map[string]any{},
		}),
		Submit:   Post(CapabilitiesRoute),
		Activity: template.JS(fmt.Sprintf("@get('%s')", ActivityRoute)),
	}
}

// CardView is the data of one layer card fragment.
type CardView struct {
	ID       string
	Name     string
	Title    string
	Abstract string
	Extent   string
}

// Signal is the path of the card's signal object.
func (c CardView) Signal() string {
	return SignalCards + "." + c.ID
}

// Save is the card's save action. The card disables itself before the
// request leaves; the server's first patch confirms it.
func (c CardView) Save() template.JS {
	return template.JS(fmt.Sprintf("$%s.saving = true; %s", c.Signal(), Post(SaveRoute(c.ID))))
}

// CardState is the signal object of one card.
type CardState struct {
	Description string `json:"description"`
	Saving      bool   `json:"saving"`
	Status      string `json:"status"`
	Outcome     string `json:"outcome"` // "", "success" or "error"
}

// Card outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// CardPatch builds a signal patch touching only the given card. The
// description is left out so the user's text is never overwritten.
func CardPatch(cardID string, saving bool, status, outcome string) map[string]any {
	return map[string]any{
		SignalCards: map[string]any{
			cardID: map[string]any{
				"saving":  saving,
				"status":  status,
				"outcome": outcome,
			},
		},
	}
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
