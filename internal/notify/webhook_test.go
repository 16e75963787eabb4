package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maqraa/internal/booking"
	"maqraa/internal/slots"
)

func TestWebhookSender_Send(t *testing.T) {
	var received webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewWebhookSender(WebhookConfig{URL: srv.URL})
	err := sender.Send(context.Background(), booking.Confirmation{
		ID:         "conf-1",
		SlotID:     "M_0510_0520",
		Mode:       booking.ModePerDay,
		BookedDays: []int{slots.Sunday, slots.Wednesday, slots.Saturday},
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, "conf-1", received.ConfirmationID)
	assert.Equal(t, "M_0510_0520", received.SlotID)
	// Weekdays cross the boundary in the meeting-scheduler encoding,
	// 1=Sunday..7=Saturday.
	assert.Equal(t, []int{1, 4, 7}, received.MeetingDays)
	assert.Empty(t, received.ConflictDays)
	assert.False(t, received.Test)
}

func TestWebhookSender_TestMode(t *testing.T) {
	prodCalls, testCalls := 0, 0
	prod := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { prodCalls++ }))
	defer prod.Close()
	test := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		testCalls++
		var p webhookPayload
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &p))
		assert.True(t, p.Test)
	}))
	defer test.Close()

	sender := NewWebhookSender(WebhookConfig{URL: prod.URL, TestURL: test.URL, TestMode: true})
	err := sender.Send(context.Background(), booking.Confirmation{ID: "conf-2", SlotID: "A_1600_1610", Mode: booking.ModeSeat})
	require.NoError(t, err)
	assert.Equal(t, 0, prodCalls)
	assert.Equal(t, 1, testCalls)
}

func TestWebhookSender_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewWebhookSender(WebhookConfig{URL: srv.URL})
	err := sender.Send(context.Background(), booking.Confirmation{ID: "conf-3", SlotID: "M_0510_0520"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
