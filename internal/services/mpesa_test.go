package services

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/okoagari/internal/config"
)

func newTestMpesa(t *testing.T, handler http.Handler) (*MpesaService, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		MpesaBaseURL:        server.URL,
		MpesaConsumerKey:    "key",
		MpesaConsumerSecret: "secret",
		MpesaShortCode:      "174379",
		MpesaPasskey:        "passkey",
		MpesaCallbackURL:    "https://example.com/callback",
	}

	return NewMpesaService(cfg), server
}

func TestAccessToken_FetchAndCache(t *testing.T) {
	var tokenCalls int64
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&tokenCalls, 1)

		expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("key:secret"))
		assert.Equal(t, expected, r.Header.Get("Authorization"))
		assert.Equal(t, "client_credentials", r.URL.Query().Get("grant_type"))

		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok-1",
			"expires_in":   "3599",
		})
	})

	svc, _ := newTestMpesa(t, mux)

	token, err := svc.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// Second call hits the cache.
	token, err = svc.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, int64(1), atomic.LoadInt64(&tokenCalls))
}

func TestAccessToken_UpstreamError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	svc, _ := newTestMpesa(t, mux)

	_, err := svc.AccessToken()
	assert.Error(t, err)
}

func TestSTKPush_SendsSignedRequest(t *testing.T) {
	var got stkPushRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-2"})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-2", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(STKPushResult{
			MerchantRequestID:   "m-1",
			CheckoutRequestID:   "c-1",
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
		})
	})

	svc, _ := newTestMpesa(t, mux)

	result, err := svc.STKPush("254722000111", 1500, "BK-42")
	require.NoError(t, err)
	assert.Equal(t, "0", result.ResponseCode)
	assert.Equal(t, "c-1", result.CheckoutRequestID)

	assert.Equal(t, "174379", got.BusinessShortCode)
	assert.Equal(t, "CustomerPayBillOnline", got.TransactionType)
	assert.Equal(t, int64(1500), got.Amount)
	assert.Equal(t, "254722000111", got.PartyA)
	assert.Equal(t, "254722000111", got.PhoneNumber)
	assert.Equal(t, "BK-42", got.AccountReference)
	assert.Len(t, got.Timestamp, 14)

	decoded, err := base64.StdEncoding.DecodeString(got.Password)
	require.NoError(t, err)
	assert.Equal(t, "174379passkey"+got.Timestamp, string(decoded))
}

func TestSTKPush_GatewayRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-3"})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	svc, _ := newTestMpesa(t, mux)

	_, err := svc.STKPush("254722000111", 100, "BK-1")
	assert.Error(t, err)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "254722000111", NormalizePhone("0722000111"))
	assert.Equal(t, "254722000111", NormalizePhone("254722000111"))
	assert.Equal(t, "254722000111", NormalizePhone("+254722000111"))
	assert.Equal(t, "254722000111", NormalizePhone(" 722000111 "))
}
