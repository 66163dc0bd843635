package summarize

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rfpmerge/internal/config"
)

func testClient(serverURL string) *Client {
	cfg, _ := config.Load()
	cfg.SummarizerBaseURL = serverURL
	cfg.SummarizerToken = "test-token"
	cfg.SummarizerRateLimitRPS = 1000
	return NewClient(cfg)
}

func TestRequestPacerSpacesCalls(t *testing.T) {
	p := newRequestPacer(100)
	start := time.Now()
	p.wait()
	p.wait()
	p.wait()
	// the first slot is free, the next two are 10ms apart
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("elapsed=%v", elapsed)
	}
}

func TestSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/summarize" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("auth header %q", got)
		}
		var req summarizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req.Sentences != 3 {
			t.Errorf("sentences=%d", req.Sentences)
		}
		_ = json.NewEncoder(w).Encode(summarizeResponse{Summary: "short version"})
	}))
	defer server.Close()

	got, err := testClient(server.URL).Summarize(context.Background(), "long answer text", 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != "short version" {
		t.Fatalf("got %q", got)
	}
}

func TestSummarizeRetriesServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(summarizeResponse{Summary: "recovered"})
	}))
	defer server.Close()

	got, err := testClient(server.URL).Summarize(context.Background(), "text to condense", 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "recovered" || calls != 2 {
		t.Fatalf("got %q calls=%d", got, calls)
	}
}

func TestSummarizeNonRetryableStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	if _, err := testClient(server.URL).Summarize(context.Background(), "text", 2); err == nil {
		t.Fatal("expected error")
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	if _, err := testClient("http://localhost:0").Summarize(context.Background(), "  ", 2); err == nil {
		t.Fatal("expected error")
	}
}

func TestSummarizeMissingBaseURL(t *testing.T) {
	cfg, _ := config.Load()
	cfg.SummarizerBaseURL = ""
	if _, err := NewClient(cfg).Summarize(context.Background(), "text", 2); err == nil {
		t.Fatal("expected error")
	}
}
