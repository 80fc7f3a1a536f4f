// Package httpapi exposes the referral platform REST API.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	app "github.com/fitmova/platform/internal/app"
	"github.com/fitmova/platform/internal/app/domain/plan"
	commissionsvc "github.com/fitmova/platform/internal/app/services/commission"
	ledgersvc "github.com/fitmova/platform/internal/app/services/ledger"
	"github.com/fitmova/platform/internal/app/services/members"
	paymentsvc "github.com/fitmova/platform/internal/app/services/payments"
	planssvc "github.com/fitmova/platform/internal/app/services/plans"
	apperrors "github.com/fitmova/platform/internal/errors"
	"github.com/fitmova/platform/internal/metrics"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app     *app.Application
	metrics *metrics.Metrics
}

// NewHandler returns a router exposing the core REST API. A nil metrics set
// gets a private registry.
func NewHandler(application *app.Application, m *metrics.Metrics) http.Handler {
	if m == nil {
		m = metrics.New("fitmova")
	}
	h := &handler{app: application, metrics: m}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/members", h.enroll).Methods(http.MethodPost)
	r.HandleFunc("/members/{id}", h.getMember).Methods(http.MethodGet)
	r.HandleFunc("/members/{id}/balance", h.balance).Methods(http.MethodGet)
	r.HandleFunc("/members/{id}/transactions", h.transactions).Methods(http.MethodGet)
	r.HandleFunc("/members/{id}/withdrawals", h.requestWithdrawal).Methods(http.MethodPost)
	r.HandleFunc("/members/{id}/withdrawals", h.listWithdrawals).Methods(http.MethodGet)
	r.HandleFunc("/members/{id}/network", h.network).Methods(http.MethodGet)
	r.HandleFunc("/members/{id}/career-status", h.careerStatus).Methods(http.MethodGet)
	r.HandleFunc("/members/{id}/career-evaluation", h.evaluateCareer).Methods(http.MethodPost)
	r.HandleFunc("/members/{id}/plans", h.listPlans).Methods(http.MethodGet)
	r.HandleFunc("/members/{id}/plans/{kind}", h.generatePlan).Methods(http.MethodPost)

	r.HandleFunc("/referrals/{id}/settle-period", h.settlePeriod).Methods(http.MethodPost)
	r.HandleFunc("/webhooks/payments", h.paymentWebhook).Methods(http.MethodPost)

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) enroll(w http.ResponseWriter, r *http.Request) {
	var payload members.EnrollInput
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, r, apperrors.InvalidInput(err.Error()))
		return
	}
	created, err := h.app.Members.Enroll(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.app.Members.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *handler) balance(w http.ResponseWriter, r *http.Request) {
	acct, err := h.app.Ledger.Balance(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *handler) transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.app.Commissions.Transactions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *handler) requestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Amount float64 `json:"amount"`
		PixKey string  `json:"pix_key"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, r, apperrors.InvalidInput(err.Error()))
		return
	}
	wd, err := h.app.Ledger.RequestWithdrawal(r.Context(), ledgersvc.WithdrawalInput{
		MemberID: mux.Vars(r)["id"],
		Amount:   payload.Amount,
		PixKey:   payload.PixKey,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.RecordWithdrawal("requested")
	writeJSON(w, http.StatusCreated, wd)
}

func (h *handler) listWithdrawals(w http.ResponseWriter, r *http.Request) {
	wds, err := h.app.Ledger.Withdrawals(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wds)
}

func (h *handler) network(w http.ResponseWriter, r *http.Request) {
	depth := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("depth")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, apperrors.InvalidInput(fmt.Sprintf("depth %q is not a number", raw)))
			return
		}
		depth = parsed
	}
	levels, err := h.app.Members.Network(r.Context(), mux.Vars(r)["id"], depth)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, levels)
}

func (h *handler) careerStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.app.Career.Status(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *handler) evaluateCareer(w http.ResponseWriter, r *http.Request) {
	ev, err := h.app.Career.Evaluate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.RecordPromotion(string(ev.Level))
	writeJSON(w, http.StatusOK, ev)
}

func (h *handler) listPlans(w http.ResponseWriter, r *http.Request) {
	kind := plan.Kind(strings.TrimSpace(r.URL.Query().Get("kind")))
	recs, err := h.app.Plans.History(r.Context(), mux.Vars(r)["id"], kind)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *handler) generatePlan(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var profile plan.Profile
	if err := decodeJSON(r.Body, &profile); err != nil {
		writeError(w, r, apperrors.InvalidInput(err.Error()))
		return
	}
	rec, err := h.app.Plans.Generate(r.Context(), planssvc.GenerateInput{
		MemberID: vars["id"],
		Kind:     plan.Kind(vars["kind"]),
		Profile:  profile,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.RecordPlan(string(rec.Kind))
	writeJSON(w, http.StatusCreated, rec)
}

func (h *handler) settlePeriod(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Amount float64 `json:"amount"`
		Period string  `json:"period"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, r, apperrors.InvalidInput(err.Error()))
		return
	}
	settlement, err := h.app.Commissions.SettlePeriod(r.Context(), commissionsvc.SettleInput{
		MemberID: mux.Vars(r)["id"],
		Amount:   payload.Amount,
		Period:   payload.Period,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, tx := range settlement.Transactions {
		h.metrics.RecordCommission(strconv.Itoa(tx.Level), tx.Amount)
	}
	for _, level := range settlement.Forfeited {
		h.metrics.RecordForfeit(strconv.Itoa(level))
	}
	writeJSON(w, http.StatusCreated, settlement)
}

func (h *handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	var event paymentsvc.Event
	if err := decodeJSON(r.Body, &event); err != nil {
		writeError(w, r, apperrors.InvalidInput(err.Error()))
		return
	}
	outcome, err := h.app.Payments.Process(r.Context(), event)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if outcome.Settlement != nil {
		for _, tx := range outcome.Settlement.Transactions {
			h.metrics.RecordCommission(strconv.Itoa(tx.Level), tx.Amount)
		}
	}
	writeJSON(w, http.StatusOK, outcome)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if se := apperrors.GetServiceError(err); se != nil {
		writeJSON(w, se.HTTPStatus, map[string]interface{}{
			"error": map[string]interface{}{
				"code":    string(se.Code),
				"message": se.Message,
				"details": se.Details,
			},
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    string(apperrors.CodeInternal),
			"message": err.Error(),
		},
	})
}
