package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResendSender(t *testing.T, handler http.HandlerFunc) *ResendSender {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := resend.NewCustomClient(server.Client(), "re_test_key")
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return NewResendSenderWithClient(client)
}

func TestResendSenderSend(t *testing.T) {
	var received map[string]interface{}
	sender := newTestResendSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test_key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	})

	result, err := sender.Send(context.Background(), sampleMessage())
	require.NoError(t, err)
	require.Equal(t, "msg_123", result.MessageID)

	require.Equal(t, "Chef Luca <noreply@example.com>", received["from"])
	require.Equal(t, []interface{}{"contact@example.com"}, received["to"])
	require.Equal(t, "Contact Form: Test Subject", received["subject"])
	require.Equal(t, "<p>Line 1<br>Line 2</p>", received["html"])
	require.Equal(t, "Line 1\nLine 2", received["text"])
	require.Equal(t, "john@example.com", received["reply_to"])
}

func TestResendSenderSurfacesAPIError(t *testing.T) {
	sender := newTestResendSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	})

	_, err := sender.Send(context.Background(), sampleMessage())
	require.Error(t, err)
	require.Contains(t, err.Error(), "resend send failed")
}

func TestResendSenderRejectsInvalidMessage(t *testing.T) {
	sender := newTestResendSender(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("API must not be called for invalid messages")
	})

	_, err := sender.Send(context.Background(), Message{From: "a@example.com", Subject: "x", Text: "y"})
	require.ErrorIs(t, err, ErrInvalidMessage)
	require.Equal(t, ProviderResend, sender.Provider())
}
