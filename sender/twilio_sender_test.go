package sender

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTwilioSender(t *testing.T, baseURL string) *TwilioSender {
	t.Helper()
	s, err := NewTwilioSender("AC123", "secret-token", "+15551230000")
	require.NoError(t, err)
	s.baseURL = baseURL
	return s
}

func TestNewTwilioSender_MissingConfig(t *testing.T) {
	var tests = []struct {
		name       string
		accountSID string
		authToken  string
		fromNumber string
	}{
		{name: "missing sid", accountSID: "", authToken: "tok", fromNumber: "+1555"},
		{name: "missing token", accountSID: "AC123", authToken: "", fromNumber: "+1555"},
		{name: "missing from", accountSID: "AC123", authToken: "tok", fromNumber: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTwilioSender(tt.accountSID, tt.authToken, tt.fromNumber)
			require.Error(t, err)
		})
	}
}

func TestTwilioSender_SendSMS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "AC123", user)
		require.Equal(t, "secret-token", pass)

		require.NoError(t, r.ParseForm())
		require.Equal(t, "+919876543210", r.PostForm.Get("To"))
		require.Equal(t, "+15551230000", r.PostForm.Get("From"))
		require.Equal(t, "Payment received", r.PostForm.Get("Body"))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"sid": "SM1", "status": "queued"})
	}))
	defer srv.Close()

	s := newTestTwilioSender(t, srv.URL)

	result, err := s.SendSMS(context.Background(), "+919876543210", "Payment received")
	require.NoError(t, err)
	require.NotEmpty(t, result.MessageID)
	require.False(t, result.SentAt.IsZero())
}

func TestTwilioSender_SendSMS_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 20003, "message": "Authenticate"})
	}))
	defer srv.Close()

	s := newTestTwilioSender(t, srv.URL)

	_, err := s.SendSMS(context.Background(), "+919876543210", "Payment received")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Authenticate")
}
