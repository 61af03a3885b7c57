package interfaces

import (
	"net/http"
	"time"

	"github.com/expensio/expensio/internal/finance/application"
)

type ReportHandler struct {
	service      TransactionServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewReportHandler(
	service TransactionServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *ReportHandler {
	return &ReportHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

// GetSummary recomputes every derived view (category breakdown, trend
// series, top expenses, total) from the transactions in the window.
// Defaults to the current calendar month.
func (h *ReportHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	startDateStr := r.URL.Query().Get("start_date")
	endDateStr := r.URL.Query().Get("end_date")

	var startDate, endDate time.Time
	if startDateStr == "" && endDateStr == "" {
		now := time.Now()
		startDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		endDate = startDate.AddDate(0, 1, -1)
	} else {
		var err error
		startDate, endDate, err = parseDateWindow(startDateStr, endDateStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	transactions, err := h.service.GetTransactionsInDateRange(caller, startDate, endDate)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary := application.BuildReportSummary(transactions, startDate, endDate)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Report summary retrieved successfully.",
		"data":    summary,
	})
}
