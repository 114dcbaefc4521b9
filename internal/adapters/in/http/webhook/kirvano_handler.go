// internal/adapters/in/http/webhook/kirvano_handler.go
package webhook

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	uc "flowify/internal/application/usecase"
	approvedEmaildom "flowify/internal/domain/approvedEmail"
)

// TokenHeader は Kirvano 側に設定した共有シークレットを載せるヘッダ。
const TokenHeader = "X-Kirvano-Token"

// KirvanoWebhookHandler は購入通知を受け取り、購入者のメールを承認済みにする。
// token が空なら検証しない（開発用）。
type KirvanoWebhookHandler struct {
	approvalUC *uc.ApprovalUsecase
	token      string
}

func NewKirvanoWebhookHandler(approvalUC *uc.ApprovalUsecase, token string) http.Handler {
	return &KirvanoWebhookHandler{approvalUC: approvalUC, token: strings.TrimSpace(token)}
}

// kirvanoPayload は実ペイロードのうち使う部分だけ。
type kirvanoPayload struct {
	Event    string `json:"event"`
	Customer struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"customer"`
	Product struct {
		Name string `json:"name"`
	} `json:"product"`
}

func (h *KirvanoWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed")
		return
	}
	if h.approvalUC == nil {
		writeJSONError(w, http.StatusInternalServerError, "approval usecase is not configured")
		return
	}
	if h.token != "" {
		got := strings.TrimSpace(r.Header.Get(TokenHeader))
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
			log.Warn().Str("remote", r.RemoteAddr).Msg("[kirvano] invalid webhook token")
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
	}

	const maxBody = 1 << 20 // 1MB
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	_ = r.Body.Close()

	var in kirvanoPayload
	if err := json.Unmarshal(body, &in); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}

	a, err := h.approvalUC.Approve(r.Context(), uc.PurchaseEvent{
		BuyerEmail:  in.Customer.Email,
		ProductName: in.Product.Name,
	})
	if err != nil {
		if errors.Is(err, uc.ErrMissingPurchaseFields) {
			writeJSONError(w, http.StatusBadRequest, "Missing required fields: email or product name")
			return
		}
		if errors.Is(err, approvedEmaildom.ErrInvalidEmail) {
			writeJSONError(w, http.StatusBadRequest, "invalid email")
			return
		}
		log.Error().Err(err).Str("event", in.Event).Msg("[kirvano] approval failed")
		writeJSONError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"plan":    a.PlanID,
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": msg,
	})
}
