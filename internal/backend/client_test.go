package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestUploadSendsZipfileField(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost || r.URL.Path != "/upload" {
			t.Errorf("got %s %s, want POST /upload", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("zipfile")
		if err != nil {
			t.Errorf("zipfile field: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if header.Filename != "a.zip" || string(data) != "PK-data" {
			t.Errorf("got %q (%q), want a.zip (PK-data)", header.Filename, data)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"filename":"a.zip","content_type":"application/zip","command":"ingest a.zip"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).Upload(context.Background(), File{
		Name: "a.zip", ContentType: "application/zip", Body: strings.NewReader("PK-data"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d, want 1", calls)
	}
	want := UploadResult{Filename: "a.zip", ContentType: "application/zip", Command: "ingest a.zip"}
	if res != want {
		t.Fatalf("res=%+v, want %+v", res, want)
	}
}

func TestCapabilities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CapabilitiesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req.URL != "http://x" {
			t.Errorf("url=%q, want http://x", req.URL)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type=%q", ct)
		}
		w.Write([]byte(`{"layers":[{"name":"roads","title":"Roads"},{"name":"rivers","title":"Rivers","bbox":[4.3,50.8,4.5,50.9]}]}`))
	}))
	defer srv.Close()

	layers, err := New(srv.URL + "/").Capabilities(context.Background(), "http://x")
	if err != nil {
		t.Fatal(err)
	}
	if len(layers) != 2 || layers[0].Name != "roads" || layers[1].Title != "Rivers" {
		t.Fatalf("layers=%+v", layers)
	}
	if _, ok := layers[0].Bound(); ok {
		t.Error("roads has no bbox")
	}
	b, ok := layers[1].Bound()
	if !ok || b.Min.X() != 4.3 || b.Max.Y() != 50.9 {
		t.Errorf("bound=%v ok=%v", b, ok)
	}
}

func TestSaveLayer(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  any
		wantMsg  string
		wantInfo bool
	}{
		{name: "success", status: 200, body: `{"status":"success","wms_info":{"srs":"EPSG:4326"}}`, wantInfo: true},
		{name: "app error", status: 200, body: `{"status":"error","message":"bad layer"}`, wantErr: new(*AppError), wantMsg: "bad layer"},
		{name: "app error without message", status: 200, body: `{"status":"queued"}`, wantErr: new(*AppError), wantMsg: `backend reported status "queued"`},
		{name: "http error", status: 500, body: `{"detail":"boom"}`, wantErr: new(*StatusError), wantMsg: "HTTP error! status: 500"},
		{name: "malformed", status: 200, body: `not json`, wantErr: new(*DecodeError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got SaveRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			in := SaveRequest{LayerName: "roads", Description: "main roads", WMSURL: "http://x"}
			res, err := New(srv.URL).SaveLayer(context.Background(), in)
			if got != in {
				t.Errorf("sent %+v, want %+v", got, in)
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Fatal(err)
				}
			} else {
				switch target := tt.wantErr.(type) {
				case **AppError:
					if !errors.As(err, target) {
						t.Fatalf("err=%v, want *AppError", err)
					}
				case **StatusError:
					if !errors.As(err, target) {
						t.Fatalf("err=%v, want *StatusError", err)
					}
				case **DecodeError:
					if !errors.As(err, target) {
						t.Fatalf("err=%v, want *DecodeError", err)
					}
				}
				if tt.wantMsg != "" && err.Error() != tt.wantMsg {
					t.Errorf("msg=%q, want %q", err.Error(), tt.wantMsg)
				}
			}
			if tt.wantInfo && res.WMSInfo["srs"] != "EPSG:4326" {
				t.Errorf("wms_info=%v", res.WMSInfo)
			}
		})
	}
}

func TestCapabilitiesMissingLayers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"detail":"nothing"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Capabilities(context.Background(), "http://x")
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err=%v, want *DecodeError", err)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Capabilities(context.Background(), "http://x")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err=%v, want *TransportError", err)
	}
}
