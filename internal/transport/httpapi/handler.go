package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/domain"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/identity"
	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/transport/wire"
)

type Handler struct {
	svc *application.Service
}

func NewHandler(svc *application.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req wire.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid json")
		return
	}

	recipient, err := identity.New(req.RecipientEmail, req.RecipientName)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing_recipient", "recipient_email is required")
		return
	}

	res, err := h.svc.SendMessage(r.Context(), application.SendCommand{
		Sender:         ParticipantFrom(r.Context()),
		Recipient:      recipient,
		ConversationID: req.ConversationID,
		Message:        req.Message.Domain(),
	})
	h.writeSend(w, r, res, err)
}

// ResumeSend takes back a 207 response of SendMessage and runs the steps it
// left unfinished.
func (h *Handler) ResumeSend(w http.ResponseWriter, r *http.Request) {
	var req wire.ResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid json")
		return
	}
	if req.ConversationID == "" || req.Message.ID == "" {
		WriteError(w, http.StatusBadRequest, "invalid_argument", "conversation_id and message.id are required")
		return
	}

	recipient, err := identity.New(req.RecipientEmail, req.RecipientName)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing_recipient", "recipient_email is required")
		return
	}

	res, err := h.svc.ResumeSend(r.Context(), application.SendCommand{
		Sender:    ParticipantFrom(r.Context()),
		Recipient: recipient,
		Message:   req.Message.Domain(),
	}, req.Partial())
	h.writeSend(w, r, res, err)
}

func (h *Handler) writeSend(w http.ResponseWriter, r *http.Request, res *application.SendResult, err error) {
	if res == nil {
		writeServiceError(w, r, err)
		return
	}

	if perr, ok := application.AsPartialSend(err); ok {
		WriteJSON(w, http.StatusMultiStatus, wire.FromSendResult(res, perr))
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, wire.FromSendResult(res, nil))
}

func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	summaries, report, err := h.svc.ListConversations(r.Context(), ParticipantFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, wire.NewConversationList(summaries, report))
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	convID := chi.URLParam(r, "conversationID")
	msgs, report, err := h.svc.ListMessages(r.Context(), ParticipantFrom(r.Context()), convID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, wire.NewMessageList(msgs, report))
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	convID := chi.URLParam(r, "conversationID")
	if err := h.svc.MarkRead(r.Context(), ParticipantFrom(r.Context()), convID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Repair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PeerEmail string `json:"peer_email"`
		PeerName  string `json:"peer_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid json")
		return
	}
	peer, err := identity.New(req.PeerEmail, req.PeerName)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing_peer", "peer_email is required")
		return
	}

	summary, err := h.svc.Repair(r.Context(), application.RepairCommand{
		Participant:    ParticipantFrom(r.Context()),
		Peer:           peer,
		ConversationID: chi.URLParam(r, "conversationID"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, wire.FromSummary(*summary))
}

func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_body", "invalid json")
		return
	}

	profile := domain.Profile{FirstName: req.FirstName, LastName: req.LastName}
	if err := h.svc.RegisterUser(r.Context(), ParticipantFrom(r.Context()), profile); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"name": profile.DisplayName()})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	entries, report, err := h.svc.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, wire.NewUserList(entries, report))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	name, err := h.svc.DisplayName(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, wire.User{Name: name, Email: email})
}

func (h *Handler) UserExists(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.UserExists(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}
