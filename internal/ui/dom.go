// Package ui is the DOM contract shared by the page templates and the
// Datastar SSE handlers: element ids, signal names, fixed texts and the
// client-side bindings declared from Go.
package ui

import (
	"fmt"
	"html"
	"html/template"
	"strings"
)

// Element ids.
const (
	FileInputID          = "file-upload"
	FileNameID           = "file-name"
	DropZoneID           = "drop-zone"
	UploadFormID         = "upload-form"
	SuccessPanelID       = "success-message"
	SuccessFilenameID    = "success-filename"
	SuccessContentTypeID = "success-content-type"
	SuccessCommandID     = "success-command"

	WMSFormID         = "wms-form"
	WMSURLID          = "wms-url"
	LayersContainerID = "layers-container"
	LayersListID      = "layers-list"

	ActivityListID = "activity-list"
)

// Signal names. Lowercase, matching data-bind.
const (
	SignalFileName      = "filename"
	SignalDropActive    = "dropactive"
	SignalUploaded      = "uploaded"
	SignalBoardID       = "boardid"
	SignalWMSURL        = "wmsurl"
	SignalLayersVisible = "layersvisible"
	SignalCards         = "cards"
)

// User-facing texts.
const (
	NoFileSelected          = "No file selected"
	UploadFailedAlert       = "An error occurred while uploading the file. Please try again."
	CapabilitiesFailedAlert = "Failed to load WMS layers. Please check the URL and try again."
	SaveInProgress          = "Processing..."
	SaveSucceeded           = "Layer saved successfully!"
	SaveFailed              = "Failed to save layer"
	CardsExpired            = "Layer list expired, reload layers"
)

// Selector returns the CSS id selector for an element id.
func Selector(id string) string {
	return "#" + id
}

// FileLabel is the text of the file name label for a selection.
func FileLabel(names []string) string {
	if len(names) == 0 {
		return NoFileSelected
	}
	return names[0]
}

// DragBinding is how the drop zone reacts to one drag event. Every binding
// prevents the browser default and stops propagation.
type DragBinding struct {
	Event  string
	Active bool // drop zone highlighted after the event
	Drop   bool // dropped files are moved into the file input
}

// DragBindings covers every drag event the drop zone listens to.
var DragBindings = []DragBinding{
	{Event: "dragenter", Active: true},
	{Event: "dragover", Active: true},
	{Event: "dragleave"},
	{Event: "drop", Drop: true},
}

// Attr is the Datastar attribute name for the binding.
func (b DragBinding) Attr() string {
	return "data-on:" + b.Event + "__prevent__stop"
}

// Expr is the Datastar expression run for the event.
func (b DragBinding) Expr() string {
	expr := fmt.Sprintf("$%s = %t", SignalDropActive, b.Active)
	if b.Drop {
		expr += fmt.Sprintf(
			"; if (evt.dataTransfer.files.length > 0) { document.getElementById('%s').files = evt.dataTransfer.files; $%s = evt.dataTransfer.files[0].name }",
			FileInputID, SignalFileName)
	}
	return expr
}

// DropZoneAttrs renders all drag bindings plus the active class toggle.
func DropZoneAttrs() template.HTMLAttr {
	var b strings.Builder
	for _, d := range DragBindings {
		fmt.Fprintf(&b, ` %s="%s"`, d.Attr(), html.EscapeString(d.Expr()))
	}
	fmt.Fprintf(&b, ` data-class:active="$%s"`, SignalDropActive)
	return template.HTMLAttr(strings.TrimSpace(b.String()))
}

// FileInputAttrs keeps the file name signal in sync with the input selection.
func FileInputAttrs() template.HTMLAttr {
	expr := fmt.Sprintf("$%s = el.files.length > 0 ? el.files[0].name : ''", SignalFileName)
	return template.HTMLAttr(`data-on:change="` + html.EscapeString(expr) + `"`)
}

// FileLabelAttrs shows the selected file name or the placeholder.
func FileLabelAttrs() template.HTMLAttr {
	expr := fmt.Sprintf("$%s || '%s'", SignalFileName, NoFileSelected)
	return template.HTMLAttr(`data-text="` + html.EscapeString(expr) + `"`)
}

// Post returns a Datastar action posting the signals to path.
func Post(path string) template.JS {
	return template.JS(fmt.Sprintf("@post('%s')", path))
}

// PostForm returns a Datastar action posting the enclosing form as multipart.
func PostForm(path string) template.JS {
	return template.JS(fmt.Sprintf("@post('%s', {contentType: 'form'})", path))
}
