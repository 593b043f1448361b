package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/discord-verifier/internal/domain"
)

// --- mock ---

type mockVerifySvc struct{ mock.Mock }

func (m *mockVerifySvc) RedeemToken(ctx context.Context, token, clientIP, userAgent string) domain.RedeemResult {
	args := m.Called(ctx, token, clientIP, userAgent)
	return args.Get(0).(domain.RedeemResult)
}

func (m *mockVerifySvc) LogPageVisit(clientIP, userAgent, path string) {
	m.Called(clientIP, userAgent, path)
}

func (m *mockVerifySvc) Status() domain.BotStatus {
	return m.Called().Get(0).(domain.BotStatus)
}

// --- Redeem ---

func TestRedeem_JSONSuccess(t *testing.T) {
	svc := &mockVerifySvc{}
	svc.On("RedeemToken", mock.Anything, "T1", "1.2.3.4", "test-agent").Return(domain.RedeemResult{
		Success: true,
		Message: "Verification successful!",
		UserData: &domain.PendingVerification{
			UserID: "42", Username: "ada#0001",
			JoinedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		},
	})

	h := NewVerificationHandler(svc)
	body := bytes.NewBufferString(`{"token":"T1"}`)
	req := httptest.NewRequest(http.MethodPost, "/verify", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	rec := httptest.NewRecorder()

	h.Redeem(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var res domain.RedeemResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	require.NotNil(t, res.UserData)
	assert.Equal(t, "42", res.UserData.UserID)
}

func TestRedeem_FormBody(t *testing.T) {
	svc := &mockVerifySvc{}
	svc.On("RedeemToken", mock.Anything, "T1", mock.Anything, mock.Anything).Return(domain.RedeemResult{
		Success: true, Message: "Verification successful!",
	})

	h := NewVerificationHandler(svc)
	form := url.Values{"token": {"T1"}}
	req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.Redeem(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertCalled(t, "RedeemToken", mock.Anything, "T1", mock.Anything, mock.Anything)
}

func TestRedeem_MissingToken(t *testing.T) {
	svc := &mockVerifySvc{}
	h := NewVerificationHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Redeem(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "RedeemToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRedeem_MalformedJSON(t *testing.T) {
	svc := &mockVerifySvc{}
	h := NewVerificationHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewBufferString(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Redeem(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRedeem_InvalidTokenIs400(t *testing.T) {
	svc := &mockVerifySvc{}
	svc.On("RedeemToken", mock.Anything, "bad", mock.Anything, mock.Anything).Return(domain.RedeemResult{
		Success: false, Message: "Token invalid or already used",
	})

	h := NewVerificationHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/verify", bytes.NewBufferString(`{"token":"bad"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Redeem(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var res domain.RedeemResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "Token invalid or already used", res.Message)
}

// --- Visit ---

func TestVisit_AlwaysAcknowledges(t *testing.T) {
	svc := &mockVerifySvc{}
	svc.On("LogPageVisit", "1.2.3.4", mock.Anything, "/landing").Return()

	h := NewVerificationHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/visit", bytes.NewBufferString(`{"path":"/landing"}`))
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	rec := httptest.NewRecorder()

	h.Visit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	svc.AssertCalled(t, "LogPageVisit", "1.2.3.4", mock.Anything, "/landing")
}

func TestVisit_EmptyBodyDefaultsPath(t *testing.T) {
	svc := &mockVerifySvc{}
	svc.On("LogPageVisit", mock.Anything, mock.Anything, "/").Return()

	h := NewVerificationHandler(svc)
	req := httptest.NewRequest(http.MethodPost, "/visit", nil)
	rec := httptest.NewRecorder()

	h.Visit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertCalled(t, "LogPageVisit", mock.Anything, mock.Anything, "/")
}

// --- Status ---

func TestStatus(t *testing.T) {
	svc := &mockVerifySvc{}
	svc.On("Status").Return(domain.BotStatus{
		Success:      true,
		BotConnected: true,
		BotUser:      "verifier#0001",
		GuildID:      "g1",
	})

	h := NewVerificationHandler(svc)
	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var st domain.BotStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.True(t, st.BotConnected)
	assert.Equal(t, "verifier#0001", st.BotUser)
}
