package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/mattbennet/lentra/internal/ledger"
	"github.com/mattbennet/lentra/internal/logging"
)

type inboundRouter interface {
	ReceiveInbound(ctx context.Context, in ledger.InboundTransfer) (*ledger.InboundResult, error)
}

// InboundHandler receives gateway payment notifications. The signature and
// the amount are the only hard requirements; memo content never causes a
// rejection, an unroutable payment is simply accepted into the pool.
type InboundHandler struct {
	router inboundRouter
	secret string
}

func NewInboundHandler(router inboundRouter, secret string) *InboundHandler {
	return &InboundHandler{router: router, secret: secret}
}

type inboundPayload struct {
	TransferID string `json:"transfer_id"`
	PayerRef   string `json:"payer_ref"`
	Amount     int64  `json:"amount"`
	Memo       string `json:"memo"`
}

func (p inboundPayload) validate() []FieldError {
	var errs []FieldError
	if p.TransferID == "" {
		errs = append(errs, FieldError{Field: "transfer_id", Message: "required"})
	} else if _, err := uuid.Parse(p.TransferID); err != nil {
		errs = append(errs, FieldError{Field: "transfer_id", Message: "must be a valid UUID"})
	}
	if p.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than zero"})
	}
	return errs
}

var ErrInvalidSignature = &AppError{http.StatusUnauthorized, "INVALID_SIGNATURE", "Webhook signature is invalid"}

func (h *InboundHandler) ReceiveTransfer(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Error("failed to read inbound transfer body", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	sig := r.Header.Get("X-Webhook-Signature")
	if !verifyHMAC(body, sig, h.secret) {
		log.Warn("inbound transfer signature verification failed")
		RespondAppError(w, ErrInvalidSignature, nil)
		return
	}

	var payload inboundPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("failed to parse inbound transfer payload", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := payload.validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	result, err := h.router.ReceiveInbound(r.Context(), ledger.InboundTransfer{
		IdempotencyKey: payload.TransferID,
		PayerRef:       payload.PayerRef,
		Amount:         payload.Amount,
		Memo:           payload.Memo,
	})
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	if result.Duplicate {
		RespondSuccess(w, http.StatusOK, map[string]string{"status": "already_received"})
		return
	}

	status := "accepted"
	if result.Intercepted {
		status = "intercepted"
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"status":      status,
		"repaid":      result.Repaid,
		"forwarded":   result.Forwarded,
		"loan_closed": result.LoanClosed,
	})
}

func verifyHMAC(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
