package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const errorBodyLimit = 512

// Client calls the ingest backend. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets an overall request timeout. Zero leaves requests bounded
// only by their context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Transport: c.http.Transport, Timeout: d}
		}
	}
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload streams f to POST /upload as the multipart field "zipfile".
func (c *Client) Upload(ctx context.Context, f File) (UploadResult, error) {
	const op = "upload"

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		pr.Close()
		return UploadResult{}, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", multipart.FileContentDisposition(UploadField, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, f.Body)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	var res UploadResult
	if err := c.do(op, req, &res); err != nil {
		return UploadResult{}, err
	}
	return res, nil
}

// Capabilities asks the backend for the layers offered by the WMS at wmsURL.
func (c *Client) Capabilities(ctx context.Context, wmsURL string) ([]Layer, error) {
	const op = "wms capabilities"

	var res CapabilitiesResponse
	if err := c.postJSON(ctx, op, "/wms/capabilities", CapabilitiesRequest{URL: wmsURL}, &res); err != nil {
		return nil, err
	}
	if res.Layers == nil {
		return nil, &DecodeError{Op: op, Err: errors.New(`missing "layers"`)}
	}
	return *res.Layers, nil
}

// SaveLayer pushes a layer description to the backend. A 2xx response whose
// status is not "success" is returned together with an *AppError.
func (c *Client) SaveLayer(ctx context.Context, in SaveRequest) (SaveResult, error) {
	var res SaveResult
	if err := c.postJSON(ctx, "wms save", "/wms/save", in, &res); err != nil {
		return SaveResult{}, err
	}
	if res.Status != StatusSuccess {
		return res, &AppError{Status: res.Status, Message: res.Message}
	}
	return res, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}
