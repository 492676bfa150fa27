package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
)

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		observability.GetLogger(context.Background()).Error("failed to encode response", zap.Error(err))
	}
}

func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

// writeServiceError maps an error returned by the sync service to a response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := observability.GetLogger(r.Context())

	var (
		identityErr *domain.IdentityError
		orphanErr   *domain.OrphanedConversationError
		storageErr  *domain.StorageError
	)

	switch {
	case errors.As(err, &identityErr):
		WriteError(w, http.StatusUnauthorized, "unauthorized", identityErr.Error())
	case errors.As(err, &orphanErr):
		WriteError(w, http.StatusConflict, "orphaned_conversation", orphanErr.Error())
	case errors.Is(err, domain.ErrMessageTooLarge):
		WriteError(w, http.StatusRequestEntityTooLarge, "message_too_large", err.Error())
	case errors.Is(err, domain.ErrInvalidMessage),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrSelfConversation):
		WriteError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, domain.ErrUnreadableDocument):
		log.Error("unreadable_document", zap.Error(err))
		WriteError(w, http.StatusConflict, "unreadable_document", "stored data has an unexpected layout")
	case errors.Is(err, domain.ErrConversationNotFound),
		errors.Is(err, domain.ErrProfileNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &storageErr):
		log.Warn("storage_error", zap.Error(err))
		if storageErr.Timeout {
			WriteError(w, http.StatusGatewayTimeout, "timeout", "storage timed out, retry the request")
			return
		}
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "storage temporarily unavailable, retry the request")
	default:
		log.Error("internal_error", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, "internal_error", "an unexpected error occurred")
	}
}
