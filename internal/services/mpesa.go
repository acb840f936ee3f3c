package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/okoagari/internal/config"
)

// MpesaService calls the Daraja API for STK push payments. Access tokens
// are cached until shortly before they expire.
type MpesaService struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	shortCode      string
	passkey        string
	callbackURL    string

	client *http.Client

	mu          sync.RWMutex
	token       string
	tokenExpiry time.Time
}

// NewMpesaService constructs an MpesaService from configuration.
func NewMpesaService(cfg *config.Config) *MpesaService {
	return &MpesaService{
		baseURL:        strings.TrimRight(cfg.MpesaBaseURL, "/"),
		consumerKey:    cfg.MpesaConsumerKey,
		consumerSecret: cfg.MpesaConsumerSecret,
		shortCode:      cfg.MpesaShortCode,
		passkey:        cfg.MpesaPasskey,
		callbackURL:    cfg.MpesaCallbackURL,
		client:         &http.Client{Timeout: 15 * time.Second},
	}
}

type mpesaTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// AccessToken returns a cached OAuth token, fetching a new one if needed.
func (s *MpesaService) AccessToken() (string, error) {
	s.mu.RLock()
	if s.token != "" && time.Now().Before(s.tokenExpiry) {
		token := s.token
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock.
	if s.token != "" && time.Now().Before(s.tokenExpiry) {
		return s.token, nil
	}

	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", fmt.Errorf("mpesa token request build: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(s.consumerKey + ":" + s.consumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa token request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("mpesa token failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var tokenResp mpesaTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("mpesa token unmarshal: %w", err)
	}

	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("mpesa token: empty access_token")
	}

	s.token = tokenResp.AccessToken
	s.tokenExpiry = time.Now().Add(55 * time.Minute)

	return s.token, nil
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// STKPushResult holds the gateway's acceptance response.
type STKPushResult struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// STKPush sends a mobile-money payment prompt to the given phone.
func (s *MpesaService) STKPush(phone string, amount int64, reference string) (*STKPushResult, error) {
	token, err := s.AccessToken()
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(s.shortCode + s.passkey + timestamp))

	push := stkPushRequest{
		BusinessShortCode: s.shortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            amount,
		PartyA:            phone,
		PartyB:            s.shortCode,
		PhoneNumber:       phone,
		CallBackURL:       s.callbackURL,
		AccountReference:  reference,
		TransactionDesc:   "Car service payment",
	}

	payload, err := json.Marshal(push)
	if err != nil {
		return nil, fmt.Errorf("mpesa stk push marshal: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("mpesa stk push request build: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mpesa stk push request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("mpesa stk push failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result STKPushResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("mpesa stk push unmarshal: %w", err)
	}

	return &result, nil
}

// NormalizePhone converts local Kenyan numbers to the 254 format the
// gateway expects.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.TrimPrefix(phone, "+")

	if strings.HasPrefix(phone, "254") {
		return phone
	}

	phone = strings.TrimPrefix(phone, "0")
	return "254" + phone
}
