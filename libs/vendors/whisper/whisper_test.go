package whisper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer f.Close()
		audio, _ := io.ReadAll(f)
		if string(audio) != "fake-audio" {
			t.Errorf("audio = %q", audio)
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "how much does it cost"})
	}))
	defer srv.Close()

	stt := NewWithEndpoint(srv.URL)
	text, conf, err := stt.Recognize(context.Background(), []byte("fake-audio"))
	if err != nil {
		t.Fatalf("recognize: %v", err)
	}
	if text != "how much does it cost" {
		t.Fatalf("text = %q", text)
	}
	if conf != 1.0 {
		t.Fatalf("confidence = %v", conf)
	}
}

func TestRecognizeBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	stt := NewWithEndpoint(srv.URL)
	if _, _, err := stt.Recognize(context.Background(), []byte("audio")); err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}
