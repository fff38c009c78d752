// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// UPLOAD
// =============================================================================

func TestUploadPDF(t *testing.T) {
	var gotName, gotBody, gotRequestID, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != UploadPath {
			t.Errorf("request = %s %s, want POST %s", r.Method, r.URL.Path, UploadPath)
		}
		gotRequestID = r.Header.Get("X-Request-ID")
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName, gotBody = header.Filename, string(data)
		gotType = header.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL + "/"})
	if err := client.UploadPDF(context.Background(), "report.pdf", strings.NewReader("%PDF-1.4 body")); err != nil {
		t.Fatalf("UploadPDF failed: %v", err)
	}

	if gotName != "report.pdf" {
		t.Errorf("filename = %q, want %q", gotName, "report.pdf")
	}
	if gotBody != "%PDF-1.4 body" {
		t.Errorf("body = %q", gotBody)
	}
	if gotType != "application/pdf" {
		t.Errorf("file part Content-Type = %q, want application/pdf", gotType)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestUploadPDF_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad pdf", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	err := NewClient(ClientConfig{BaseURL: srv.URL}).UploadPDF(context.Background(), "a.pdf", strings.NewReader("x"))
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("error = %v, want ErrStatus", err)
	}
	var cerr *ClientError
	if !errors.As(err, &cerr) || cerr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("StatusCode = %v, want 422", cerr)
	}
}

// =============================================================================
// QUESTIONS
// =============================================================================

func TestAskQuestion(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{"answer", `{"answer":"Step 1:\n1. Do A"}`, "Step 1:\n1. Do A", nil},
		{"missing answer", `{"sources":[]}`, FallbackAnswer, nil},
		{"empty answer", `{"answer":""}`, FallbackAnswer, nil},
		{"not json", `plain text answer`, FallbackAnswer, nil},
		{"html page", `<html>oops</html>`, FallbackAnswer, nil},
		{"answer not a string", `{"answer":42}`, FallbackAnswer, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotQuestion string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != AskPath {
					t.Errorf("path = %q, want %q", r.URL.Path, AskPath)
				}
				gotQuestion = r.FormValue("question")
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			got, err := NewClient(ClientConfig{BaseURL: srv.URL}).AskQuestion(context.Background(), "What is émigré?")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AskQuestion failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("answer = %q, want %q", got, tt.want)
			}
			if gotQuestion != "What is émigré?" {
				t.Errorf("question field = %q", gotQuestion)
			}
		})
	}
}

func TestAskQuestion_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.AskQuestion(context.Background(), "slow?")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("error = %v, want ErrTimeout", err)
	}
}

func TestAskQuestion_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: url}).AskQuestion(context.Background(), "hello?")
	if !errors.Is(err, ErrConnection) {
		t.Errorf("error = %v, want ErrConnection", err)
	}
}

func TestClient_NoRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(ClientConfig{BaseURL: srv.URL}).AskQuestion(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("server saw %d calls, want 1", n)
	}
}

func TestClient_LimiterHonoursContext(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1", RequestsPerSecond: 0.001})
	// drain the single burst token
	client.limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := client.AskQuestion(ctx, "q")
	var cerr *ClientError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *ClientError", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(ClientConfig{})
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", c.BaseURL(), DefaultBaseURL)
	}
	if c.httpClient.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v, want 120s", c.httpClient.Timeout)
	}
	if c.limiter != nil {
		t.Error("limiter should be nil when RequestsPerSecond is 0")
	}
}

func TestErrorType_String(t *testing.T) {
	if got := ErrTypeTimeout.String(); got != "timeout" {
		t.Errorf("String() = %q, want %q", got, "timeout")
	}
	if got := ErrorType(99).String(); got != "unknown" {
		t.Errorf("String() = %q, want %q", got, "unknown")
	}
}
