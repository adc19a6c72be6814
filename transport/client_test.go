package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tailored-agentic-units/chatwidget/transport"
)

func newClient(t *testing.T, handler http.HandlerFunc) *transport.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return transport.New(&transport.Config{BaseURL: srv.URL})
}

func TestDefaultConfig(t *testing.T) {
	cfg := transport.DefaultConfig()

	if cfg.BaseURL != "http://localhost:5001" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "http://localhost:5001")
	}
	if cfg.ChatPath != "/chat" {
		t.Errorf("ChatPath = %q, want %q", cfg.ChatPath, "/chat")
	}
	if cfg.UploadPath != "/upload" {
		t.Errorf("UploadPath = %q, want %q", cfg.UploadPath, "/upload")
	}
	if cfg.UploadField != "file" {
		t.Errorf("UploadField = %q, want %q", cfg.UploadField, "file")
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := transport.DefaultConfig()
	cfg.Merge(&transport.Config{BaseURL: "http://example.test", UploadField: "document"})

	if cfg.BaseURL != "http://example.test" {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, "http://example.test")
	}
	if cfg.UploadField != "document" {
		t.Errorf("UploadField = %q, want %q", cfg.UploadField, "document")
	}
	if cfg.ChatPath != "/chat" {
		t.Errorf("ChatPath = %q, want unchanged %q", cfg.ChatPath, "/chat")
	}
}

func TestClient_Chat(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotBody map[string]string

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"Hi there"}`))
	})

	reply, err := client.Chat(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if reply != "Hi there" {
		t.Errorf("Chat() = %q, want %q", reply, "Hi there")
	}
	if gotMethod != http.MethodPost || gotPath != "/chat" {
		t.Errorf("request = %s %s, want POST /chat", gotMethod, gotPath)
	}
	if !strings.HasPrefix(gotContentType, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotBody["message"] != "Hello" {
		t.Errorf("body message = %q, want %q", gotBody["message"], "Hello")
	}
}

func TestClient_Chat_EmptyReply(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reply":""}`))
	})

	reply, err := client.Chat(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "" {
		t.Errorf("Chat() = %q, want empty", reply)
	}
}

func TestClient_Chat_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantReason string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "", wantStatus: 500, wantReason: "500 Internal Server Error"},
		{name: "json error body", status: http.StatusBadRequest, body: `{"error":"message required"}`, wantStatus: 400, wantReason: "message required"},
		{name: "text error body", status: http.StatusBadGateway, body: "upstream down\n", wantStatus: 502, wantReason: "upstream down"},
		{name: "missing reply", status: http.StatusOK, body: `{}`, wantStatus: 200, wantReason: "response has no reply"},
		{name: "error in ok body", status: http.StatusOK, body: `{"error":"model offline"}`, wantStatus: 200, wantReason: "model offline"},
		{name: "malformed body", status: http.StatusOK, body: "<html>", wantStatus: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Chat(context.Background(), "Hello")

			if !errors.Is(err, transport.ErrTransport) {
				t.Fatalf("Chat() error = %v, want %v", err, transport.ErrTransport)
			}
			var terr *transport.Error
			if !errors.As(err, &terr) {
				t.Fatalf("Chat() error type = %T, want *transport.Error", err)
			}
			if terr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", terr.StatusCode, tt.wantStatus)
			}
			if terr.Endpoint != "/chat" {
				t.Errorf("Endpoint = %q, want %q", terr.Endpoint, "/chat")
			}
			if tt.wantReason != "" && transport.Reason(err) != tt.wantReason {
				t.Errorf("Reason() = %q, want %q", transport.Reason(err), tt.wantReason)
			}
		})
	}
}

func TestClient_Chat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := transport.New(&transport.Config{BaseURL: url})

	_, err := client.Chat(context.Background(), "Hello")

	if !errors.Is(err, transport.ErrTransport) {
		t.Fatalf("Chat() error = %v, want %v", err, transport.ErrTransport)
	}
	var terr *transport.Error
	if errors.As(err, &terr) && terr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", terr.StatusCode)
	}
}

func TestClient_Chat_ContextCanceled(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"reply":"late"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Chat(ctx, "Hello")

	if !errors.Is(err, transport.ErrTransport) {
		t.Errorf("Chat() error = %v, want %v", err, transport.ErrTransport)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Chat() error = %v, want %v", err, context.Canceled)
	}
}

func TestClient_UserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.Write([]byte(`{"reply":"ok"}`))
	}))
	defer srv.Close()

	client := transport.New(&transport.Config{BaseURL: srv.URL, UserAgent: "widget-test/2"})
	if _, err := client.Chat(context.Background(), "x"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if got != "widget-test/2" {
		t.Errorf("User-Agent = %q, want %q", got, "widget-test/2")
	}
}

type receivedFile struct {
	field       string
	filename    string
	contentType string
	content     string
}

func uploadHandler(t *testing.T, got *receivedFile, status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" {
			t.Errorf("path = %q, want /upload", r.URL.Path)
		}
		mr, err := r.MultipartReader()
		if err != nil {
			t.Errorf("MultipartReader() error = %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		part, err := mr.NextPart()
		if err != nil {
			t.Errorf("NextPart() error = %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		data, _ := io.ReadAll(part)
		*got = receivedFile{
			field:       part.FormName(),
			filename:    part.FileName(),
			contentType: part.Header.Get("Content-Type"),
			content:     string(data),
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestClient_Upload(t *testing.T) {
	var got receivedFile
	client := newClient(t, uploadHandler(t, &got, http.StatusOK, `{"success":"File 'notes.txt' processed."}`))

	outcome, err := client.Upload(context.Background(), "/home/user/notes.txt", strings.NewReader("plain text notes"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if outcome != "File 'notes.txt' processed." {
		t.Errorf("Upload() = %q, want server success text", outcome)
	}
	if got.field != "file" {
		t.Errorf("field = %q, want %q", got.field, "file")
	}
	if got.filename != "notes.txt" {
		t.Errorf("filename = %q, want %q", got.filename, "notes.txt")
	}
	if !strings.HasPrefix(got.contentType, "text/plain") {
		t.Errorf("content type = %q, want text/plain", got.contentType)
	}
	if got.content != "plain text notes" {
		t.Errorf("content = %q, want %q", got.content, "plain text notes")
	}
}

func TestClient_Upload_LogsToLogger(t *testing.T) {
	var got receivedFile
	srv := httptest.NewServer(uploadHandler(t, &got, http.StatusOK, `{"success":"ok"}`))
	defer srv.Close()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	client := transport.New(&transport.Config{BaseURL: srv.URL}, transport.WithLogger(logger))

	if _, err := client.Upload(context.Background(), "notes.txt", strings.NewReader("plain text notes")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	line := buf.String()
	for _, want := range []string{`"message":"uploading file"`, `"filename":"notes.txt"`, `"endpoint":"/upload"`} {
		if !strings.Contains(line, want) {
			t.Errorf("log output missing %s:\n%s", want, line)
		}
	}
}

func TestClient_Upload_DetectsBinaryType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

	var got receivedFile
	client := newClient(t, uploadHandler(t, &got, http.StatusOK, `{"success":"ok"}`))

	if _, err := client.Upload(context.Background(), "pixel.png", strings.NewReader(string(png))); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if got.contentType != "image/png" {
		t.Errorf("content type = %q, want %q", got.contentType, "image/png")
	}
}

func TestClient_Upload_DefaultOutcome(t *testing.T) {
	var got receivedFile
	client := newClient(t, uploadHandler(t, &got, http.StatusOK, ""))

	outcome, err := client.Upload(context.Background(), "report.pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	want := "File 'report.pdf' uploaded successfully."
	if outcome != want {
		t.Errorf("Upload() = %q, want %q", outcome, want)
	}
}

func TestClient_Upload_CustomField(t *testing.T) {
	var got receivedFile
	srv := httptest.NewServer(uploadHandler(t, &got, http.StatusOK, `{"success":"ok"}`))
	defer srv.Close()

	client := transport.New(&transport.Config{BaseURL: srv.URL, UploadField: "document"})
	if _, err := client.Upload(context.Background(), "a.txt", strings.NewReader("a")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if got.field != "document" {
		t.Errorf("field = %q, want %q", got.field, "document")
	}
}

func TestClient_Upload_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantReason string
	}{
		{name: "rejected with error", status: http.StatusBadRequest, body: `{"error":"No file part"}`, wantReason: "No file part"},
		{name: "error in ok body", status: http.StatusOK, body: `{"error":"Disk full"}`, wantReason: "Disk full"},
		{name: "server error", status: http.StatusInternalServerError, body: "", wantReason: "500 Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got receivedFile
			client := newClient(t, uploadHandler(t, &got, tt.status, tt.body))

			_, err := client.Upload(context.Background(), "a.txt", strings.NewReader("a"))

			if !errors.Is(err, transport.ErrTransport) {
				t.Fatalf("Upload() error = %v, want %v", err, transport.ErrTransport)
			}
			if transport.Reason(err) != tt.wantReason {
				t.Errorf("Reason() = %q, want %q", transport.Reason(err), tt.wantReason)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	err := &transport.Error{Endpoint: "/chat", StatusCode: 503, Message: "busy"}

	want := "transport failed: POST /chat: status 503: busy"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
