package interfaces

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/expensio/expensio/internal/finance/application"
	"github.com/expensio/expensio/internal/finance/domain"
	financeErrors "github.com/expensio/expensio/internal/finance/errors"
)

const dateLayout = "2006-01-02"

type TransactionServiceInterface interface {
	CreateTransaction(caller application.Caller, req application.TransactionRequest) (*domain.Transaction, error)
	UpdateTransaction(caller application.Caller, transactionID string, req application.TransactionRequest) (*domain.Transaction, error)
	DeleteTransaction(caller application.Caller, transactionID string) error
	GetUserTransactions(caller application.Caller) ([]domain.Transaction, error)
	GetTransactionsInDateRange(caller application.Caller, startDate, endDate time.Time) ([]domain.Transaction, error)
	GetMonthlyTotal(caller application.Caller, referenceDate time.Time) (float64, error)
}

type TransactionHandler struct {
	service      TransactionServiceInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewTransactionHandler(
	service TransactionServiceInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *TransactionHandler {
	if service == nil {
		log.Fatal("Service must not be nil")
		return nil
	}
	if respondJSON == nil || respondError == nil {
		log.Fatal("Responder functions must not be nil")
		return nil
	}
	return &TransactionHandler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

type transactionRequestBody struct {
	Name     string `json:"name"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

func (b transactionRequestBody) toServiceRequest() (application.TransactionRequest, error) {
	parsedDate, err := time.Parse(dateLayout, b.Date)
	if err != nil {
		return application.TransactionRequest{}, financeErrors.NewValidationErrorf("Invalid date format, expected %s", dateLayout)
	}
	return application.TransactionRequest{
		Name:       b.Name,
		AmountText: b.Amount,
		Category:   b.Category,
		Date:       parsedDate,
	}, nil
}

// CallerFromContext pulls the identity the auth middleware resolved.
func CallerFromContext(r *http.Request) (application.Caller, bool) {
	userID, ok := r.Context().Value("userID").(string)
	if !ok || userID == "" {
		return application.Caller{}, false
	}
	email, _ := r.Context().Value("userEmail").(string)
	name, _ := r.Context().Value("userName").(string)
	return application.Caller{ID: userID, Email: email, Name: name}, true
}

// respondServiceError converts every service failure into the uniform
// envelope; nothing propagates to the client as an unhandled fault.
func (h *TransactionHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case financeErrors.IsUnauthorized(err):
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
	case financeErrors.IsValidationError(err):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case financeErrors.IsNotFoundError(err):
		h.respondError(w, http.StatusNotFound, err.Error())
	default:
		// internal errors keep their message for debuggability
		h.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var body transactionRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := body.toServiceRequest()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	transaction, err := h.service.CreateTransaction(caller, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully created.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID := r.PathValue("transactionID")
	if transactionID == "" {
		h.respondError(w, http.StatusBadRequest, "Transaction ID is required")
		return
	}
	var body transactionRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := body.toServiceRequest()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	transaction, err := h.service.UpdateTransaction(caller, transactionID, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully updated.",
		"data":    transaction,
	})
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	transactionID := r.PathValue("transactionID")
	if transactionID == "" {
		h.respondError(w, http.StatusBadRequest, "Transaction ID is required")
		return
	}

	if err := h.service.DeleteTransaction(caller, transactionID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transaction successfully deleted.",
	})
}

// GetUserTransactions lists the caller's transactions, optionally limited to
// a start_date/end_date window (whole calendar days, inclusive).
func (h *TransactionHandler) GetUserTransactions(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	startDateStr := r.URL.Query().Get("start_date")
	endDateStr := r.URL.Query().Get("end_date")

	var transactions []domain.Transaction
	var err error
	if startDateStr == "" && endDateStr == "" {
		transactions, err = h.service.GetUserTransactions(caller)
	} else {
		var startDate, endDate time.Time
		startDate, endDate, err = parseDateWindow(startDateStr, endDateStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		transactions, err = h.service.GetTransactionsInDateRange(caller, startDate, endDate)
	}
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Transactions retrieved successfully.",
		"data":    transactions,
	})
}

func (h *TransactionHandler) GetMonthlyTotal(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r)
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	referenceDate := time.Now()
	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		parsed, err := time.Parse(dateLayout, monthStr)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid month date format")
			return
		}
		referenceDate = parsed
	}

	total, err := h.service.GetMonthlyTotal(caller, referenceDate)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Monthly total retrieved successfully.",
		"data":    map[string]interface{}{"total": total},
	})
}

func parseDateWindow(startDateStr, endDateStr string) (time.Time, time.Time, error) {
	if startDateStr == "" || endDateStr == "" {
		return time.Time{}, time.Time{}, financeErrors.NewValidationError("Both start_date and end_date are required")
	}
	startDate, err := time.Parse(dateLayout, startDateStr)
	if err != nil {
		return time.Time{}, time.Time{}, financeErrors.NewValidationError("Invalid start date format")
	}
	endDate, err := time.Parse(dateLayout, endDateStr)
	if err != nil {
		return time.Time{}, time.Time{}, financeErrors.NewValidationError("Invalid end date format")
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, financeErrors.NewValidationError("end_date must not precede start_date")
	}
	return startDate, endDate, nil
}
