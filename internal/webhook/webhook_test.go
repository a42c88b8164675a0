package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"vacancybot/internal/vacancy"
)

func TestNotifySuccess(t *testing.T) {
	var received payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(body, &received); err != nil {
			t.Errorf("unmarshal payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	ok := c.Notify(context.Background(), vacancy.Vacancy{Title: "Frontend Developer"}, "doc text")
	if !ok {
		t.Fatal("expected delivery success")
	}
	if received.Record.Title != "Frontend Developer" || received.Document != "doc text" {
		t.Fatalf("payload mismatch: %+v", received)
	}
}

func TestNotifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, nil)
	if c.Notify(context.Background(), vacancy.Vacancy{}, "doc") {
		t.Fatal("5xx must report failure")
	}
}

func TestNotifyUnreachableSink(t *testing.T) {
	c := New("http://127.0.0.1:1/nope", 100*time.Millisecond, nil)
	if c.Notify(context.Background(), vacancy.Vacancy{}, "doc") {
		t.Fatal("connection failure must report false, not panic or error")
	}
}
