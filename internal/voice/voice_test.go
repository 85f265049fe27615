package voice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ai-sales-agent/libs/interfaces"
)

type fakeTTS struct {
	streamErr error
	speakErr  error
	audio     []byte
}

func (f *fakeTTS) Speak(_ context.Context, _ string, _ ...interfaces.TTSOption) ([]byte, error) {
	return f.audio, f.speakErr
}

func (f *fakeTTS) SpeakStream(_ context.Context, _ string, w io.Writer, _ ...interfaces.TTSOption) error {
	if f.streamErr != nil {
		return f.streamErr
	}
	_, err := w.Write(f.audio)
	return err
}

type fakeSTT struct {
	text string
	err  error
}

func (f *fakeSTT) Recognize(_ context.Context, _ []byte, _ ...interfaces.STTOption) (string, float32, error) {
	return f.text, 0.9, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(new(strings.Builder), nil))
}

func TestSpeakWritesWavFile(t *testing.T) {
	dir := t.TempDir()
	g := NewGateway(&fakeTTS{audio: []byte("RIFFdata")}, nil, dir, discardLogger())

	if !g.Speak(context.Background(), "call-1", "hello there") {
		t.Fatal("expected audio to be produced")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 voice file, got %d", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != ".wav" {
		t.Fatalf("unexpected file name %q", entries[0].Name())
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read voice file: %v", err)
	}
	if string(data) != "RIFFdata" {
		t.Fatalf("voice file content = %q", data)
	}
}

func TestSpeakFallsBackToNonStreaming(t *testing.T) {
	dir := t.TempDir()
	g := NewGateway(&fakeTTS{streamErr: errors.New("no stream"), audio: []byte("bytes")}, nil, dir, discardLogger())

	if !g.Speak(context.Background(), "call-1", "hello") {
		t.Fatal("expected non-streaming fallback to produce audio")
	}
}

func TestSpeakDegradesWhenVendorFails(t *testing.T) {
	dir := t.TempDir()
	g := NewGateway(&fakeTTS{streamErr: errors.New("down"), speakErr: errors.New("down")}, nil, dir, discardLogger())

	if g.Speak(context.Background(), "call-1", "hello") {
		t.Fatal("expected Speak to report failure")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed synthesis left %d files behind", len(entries))
	}
}

func TestSpeakWithoutVendor(t *testing.T) {
	g := NewGateway(nil, nil, t.TempDir(), discardLogger())
	if g.Speak(context.Background(), "call-1", "hello") {
		t.Fatal("nil vendor must not claim audio was produced")
	}
}

func TestListenOutcomes(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name        string
		stt         interfaces.STT
		audio       []byte
		wantOutcome ListenOutcome
		wantText    string
	}{
		{"heard", &fakeSTT{text: " I'd like to know more "}, []byte("audio"), Heard, "I'd like to know more"},
		{"empty audio", &fakeSTT{text: "ignored"}, nil, NoResponse, ""},
		{"recognizer error", &fakeSTT{err: errors.New("boom")}, []byte("audio"), Failed, ""},
		{"empty transcript", &fakeSTT{text: "  "}, []byte("audio"), NotUnderstood, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			g := NewGateway(nil, c.stt, t.TempDir(), discardLogger())
			res := g.Listen(ctx, c.audio)
			if res.Outcome != c.wantOutcome {
				t.Fatalf("outcome = %v, want %v", res.Outcome, c.wantOutcome)
			}
			if res.Text != c.wantText {
				t.Fatalf("text = %q, want %q", res.Text, c.wantText)
			}
		})
	}
}

func TestListenWithoutRecognizer(t *testing.T) {
	g := NewGateway(nil, nil, t.TempDir(), discardLogger())
	if res := g.Listen(context.Background(), []byte("audio")); res.Outcome != Failed {
		t.Fatalf("outcome = %v, want Failed", res.Outcome)
	}
}

func TestSentinelStrings(t *testing.T) {
	cases := []struct {
		res  ListenResult
		want string
	}{
		{ListenResult{Text: "hello", Outcome: Heard}, "hello"},
		{ListenResult{Outcome: NoResponse}, "No response"},
		{ListenResult{Outcome: NotUnderstood}, "Could not understand"},
		{ListenResult{Outcome: Failed}, "Error occurred"},
	}
	for _, c := range cases {
		if got := c.res.Sentinel(); got != c.want {
			t.Errorf("Sentinel() = %q, want %q", got, c.want)
		}
	}
}
