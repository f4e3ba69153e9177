package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/transitpass/transitpass-backend/pkg/errors"
)

func TestRecognizeReturnsExtractedText(t *testing.T) {
	image := []byte("fake-png-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recognize" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token-123" {
			t.Fatalf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		var req recognizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Language != "eng" {
			t.Fatalf("unexpected language %q", req.Language)
		}
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil || string(decoded) != string(image) {
			t.Fatalf("image bytes did not round-trip")
		}
		_ = json.NewEncoder(w).Encode(recognizeResponse{Text: "asha verma voter id ab1234"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, WithAPIKey("token-123"))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	text, err := client.Recognize(context.Background(), image, "")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "asha verma voter id ab1234" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestRecognizeNonOKStatusIsDependencyError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine crashed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = client.Recognize(context.Background(), []byte("img"), "eng")
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestRecognizeTimeoutSurfacesAsError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	client, err := NewClient(server.URL, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.Recognize(context.Background(), []byte("img"), "eng"); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for empty base url")
	}
}

func TestRecognizeRequiresImage(t *testing.T) {
	client, err := NewClient("http://ocr.internal")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Recognize(context.Background(), nil, "eng"); err == nil {
		t.Fatal("expected validation error for empty image")
	}
}
