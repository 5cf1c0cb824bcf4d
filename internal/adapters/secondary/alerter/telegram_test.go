package alerter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Nest-Microservices-Marcelo/payments-ms/internal/pkg/logger"
)

func TestNewClientDisabled(t *testing.T) {
	if c := NewClient(&Config{}, logger.Nop()); c != nil {
		t.Error("client must be nil without token and chat")
	}
	if c := NewClient(nil, logger.Nop()); c != nil {
		t.Error("client must be nil for nil config")
	}

	var c *Client
	if err := c.SendAlert(context.Background(), "x"); err == nil {
		t.Error("nil client must return an error")
	}
}

func TestSendAlert(t *testing.T) {
	var path string
	var got sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":1}}`)
	}))
	defer srv.Close()

	thread := int64(7)
	c := NewClient(&Config{BotToken: "123:abc", ChatID: -100, MessageThreadID: &thread, APIURL: srv.URL + "/"}, logger.Nop())

	if err := c.SendAlert(context.Background(), "payment event not delivered"); err != nil {
		t.Fatalf("SendAlert: %v", err)
	}

	if path != "/bot123:abc/sendMessage" {
		t.Errorf("path = %s", path)
	}
	if got.ChatID != -100 || got.Text != "payment event not delivered" {
		t.Errorf("unexpected request %+v", got)
	}
	if got.MessageThreadID == nil || *got.MessageThreadID != 7 {
		t.Errorf("thread id = %v", got.MessageThreadID)
	}
}

func TestSendAlertAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`)
	}))
	defer srv.Close()

	c := NewClient(&Config{BotToken: "t", ChatID: 1, APIURL: srv.URL}, logger.Nop())
	if err := c.SendAlert(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}
