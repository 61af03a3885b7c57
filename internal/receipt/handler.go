package receipt

import (
	"context"
	"io"
	"net/http"

	financeErrors "github.com/expensio/expensio/internal/finance/errors"
)

type ExtractorInterface interface {
	Extract(ctx context.Context, mimeType string, data []byte) (ExtractedReceipt, error)
}

type Handler struct {
	service      ExtractorInterface
	respondJSON  func(w http.ResponseWriter, status int, payload interface{})
	respondError func(w http.ResponseWriter, status int, message string)
}

func NewHandler(
	service ExtractorInterface,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string),
) *Handler {
	return &Handler{
		service:      service,
		respondJSON:  respondJSON,
		respondError: respondError,
	}
}

// HandleScan accepts a multipart "receipt" image and responds with the
// extracted fields. The client feeds them into the create form for the user
// to confirm; this endpoint never writes a transaction.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	if _, ok := r.Context().Value("userID").(string); !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptBytes+1024)
	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		h.respondError(w, http.StatusBadRequest, "Receipt image is too large or the form is malformed")
		return
	}

	file, header, err := r.FormFile("receipt")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "A 'receipt' image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Could not read the uploaded file")
		return
	}

	extracted, err := h.service.Extract(r.Context(), header.Header.Get("Content-Type"), data)
	if err != nil {
		switch {
		case financeErrors.IsValidationError(err):
			h.respondError(w, http.StatusBadRequest, err.Error())
		case IsProviderError(err):
			h.respondError(w, http.StatusBadGateway, err.Error())
		default:
			h.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Receipt scanned successfully. Review before saving.",
		"data":    extracted,
	})
}
