package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/discord-verifier/internal/application/verify"
	"github.com/discord-verifier/internal/pkg/validate"
	"github.com/discord-verifier/internal/transport/http/middleware"
)

// VerificationHandler exposes token redemption, visit logging and bot status.
type VerificationHandler struct {
	svc verify.Service
}

func NewVerificationHandler(svc verify.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

type redeemRequest struct {
	Token string `json:"token" validate:"required"`
}

// Redeem consumes a verification token. The response does not wait on role
// grant, DM or audit logging; those are scheduled onto the bot runtime.
func (h *VerificationHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	req, ok := parseRedeemRequest(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Token required")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Token required")
		return
	}

	res := h.svc.RedeemToken(r.Context(), req.Token, middleware.RealIP(r), userAgent(r))
	if !res.Success {
		writeJSON(w, http.StatusBadRequest, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Visit records a page visit. Always acknowledges; delivery is best-effort.
func (h *VerificationHandler) Visit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path string `json:"path"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Path == "" {
		body.Path = "/"
	}

	h.svc.LogPageVisit(middleware.RealIP(r), userAgent(r), body.Path)
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Visit recorded"})
}

// Status reports the bot connection state.
func (h *VerificationHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// parseRedeemRequest accepts the token from a JSON body or a form post; the
// external verification page uses either depending on how it is embedded.
func parseRedeemRequest(r *http.Request) (redeemRequest, bool) {
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "application/json") {
		var req redeemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return redeemRequest{}, false
		}
		req.Token = strings.TrimSpace(req.Token)
		return req, true
	}
	if err := r.ParseForm(); err != nil {
		return redeemRequest{}, false
	}
	return redeemRequest{Token: strings.TrimSpace(r.PostFormValue("token"))}, true
}

func userAgent(r *http.Request) string {
	if ua := r.Header.Get("User-Agent"); ua != "" {
		return ua
	}
	return "Unknown"
}
