package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pliu/socialite/internal/auth"
	"github.com/pliu/socialite/internal/middleware"
	"github.com/pliu/socialite/internal/models"
	"github.com/pliu/socialite/internal/store"
	"github.com/pliu/socialite/internal/ws"
)

type AuthHandler struct {
	Store store.Store
	Hub   *ws.Hub
}

type RegisterRequest struct {
	// Account is optional; callers without their own opaque token (e.g.
	// a wallet address) get a minted one.
	Account    string `json:"account"`
	Name       string `json:"name"`
	ProfilePic string `json:"profile_pic"`
	Bio        string `json:"bio"`
	Password   string `json:"password"`
}

type Credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	account := models.Account(req.Account)
	if account == "" {
		account = models.Account(uuid.NewString())
	}

	if err := h.Store.Register(account, req.Name, req.ProfilePic, req.Bio, req.Password); err != nil {
		writeStoreError(w, err)
		return
	}

	h.Hub.Broadcast(ws.Event{
		Type:    ws.EventUserRegistered,
		Payload: map[string]string{"account": string(account), "name": req.Name},
	})

	setSession(w, account)
	respondJSON(w, http.StatusCreated, map[string]string{"account": string(account)})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Store.SearchByName(creds.Name)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	ok, err := h.Store.CheckPassword(user.Account, creds.Password)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	setSession(w, user.Account)
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) SearchUser(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	user, err := h.Store.SearchByName(name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	account := models.Account(mux.Vars(r)["account"])

	user, err := h.Store.GetUserProfile(account)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if user == nil {
		http.Error(w, "no user found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)

	var req struct {
		ProfilePic string `json:"profile_pic"`
		Bio        string `json:"bio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.UpdateProfile(caller, req.ProfilePic, req.Bio); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func setSession(w http.ResponseWriter, account models.Account) {
	http.SetCookie(w, &http.Cookie{
		Name:  "account",
		Value: auth.SignCookie(string(account)),
		Path:  "/",
	})
}
