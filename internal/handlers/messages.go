package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pliu/socialite/internal/middleware"
	"github.com/pliu/socialite/internal/models"
	"github.com/pliu/socialite/internal/store"
	"github.com/pliu/socialite/internal/ws"
)

type MessageHandler struct {
	Store store.Store
	Hub   *ws.Hub
}

type SendMessageRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := h.Store.SendMessage(caller, models.Account(req.To), req.Content)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	h.Hub.Notify(ws.Event{Type: ws.EventNewMessage, Payload: msg}, msg.Sender, msg.Receiver)

	respondJSON(w, http.StatusCreated, msg)
}

func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)
	other := models.Account(mux.Vars(r)["account"])

	messages, err := h.Store.GetMessages(caller, other)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

func (h *MessageHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)
	other := models.Account(mux.Vars(r)["account"])

	sent, received, err := h.Store.GetConversation(caller, other)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sent == nil {
		sent = []models.Message{}
	}
	if received == nil {
		received = []models.Message{}
	}
	respondJSON(w, http.StatusOK, map[string][]models.Message{
		"sent":     sent,
		"received": received,
	})
}

func (h *MessageHandler) GetContacts(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)

	contacts, err := h.Store.GetAllConnectedContacts(caller)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

func (h *MessageHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)
	other := models.Account(mux.Vars(r)["account"])

	if err := h.Store.DeleteContact(caller, other); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
