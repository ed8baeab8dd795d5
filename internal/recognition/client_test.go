package recognition_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/meterwatch/meter-reading-api/internal/recognition"
)

func recognitionServer(t *testing.T, answer string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-1.5-flash:generateContent" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("Expected api key in query, got %q", r.URL.Query().Get("key"))
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]string{{"text": answer}},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(baseURL string) *recognition.Client {
	return recognition.NewClient("test-key", "gemini-1.5-flash", baseURL, 5*time.Second, zap.NewNop())
}

func TestReadMeterValue_ParsesInteger(t *testing.T) {
	srv := recognitionServer(t, "123\n")
	defer srv.Close()

	client := newTestClient(srv.URL)

	value, err := client.ReadMeterValue(context.Background(), "aW1hZ2U=")
	if err != nil {
		t.Fatalf("Failed to read meter value: %v", err)
	}

	if value != 123 {
		t.Errorf("Expected 123, got %d", value)
	}
}

func TestReadMeterValue_NonNumericAnswer(t *testing.T) {
	srv := recognitionServer(t, "I cannot read this meter")
	defer srv.Close()

	client := newTestClient(srv.URL)

	if _, err := client.ReadMeterValue(context.Background(), "aW1hZ2U="); err == nil {
		t.Error("Expected error for non-numeric answer")
	}
}

func TestReadMeterValue_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	if _, err := client.ReadMeterValue(context.Background(), "aW1hZ2U="); err == nil {
		t.Error("Expected error for non-200 response")
	}
}

func TestReadMeterValue_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	if _, err := client.ReadMeterValue(context.Background(), "aW1hZ2U="); err == nil {
		t.Error("Expected error for empty candidates")
	}
}
