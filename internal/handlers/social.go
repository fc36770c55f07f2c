package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pliu/socialite/internal/middleware"
	"github.com/pliu/socialite/internal/models"
	"github.com/pliu/socialite/internal/store"
	"github.com/pliu/socialite/internal/ws"
)

type SocialHandler struct {
	Store store.Store
	Hub   *ws.Hub
}

type CreatePostRequest struct {
	Content string   `json:"content"`
	Uploads []string `json:"uploads"`
}

type CommentRequest struct {
	Text          string `json:"text"`
	CommentorName string `json:"commentor_name"`
}

func (h *SocialHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.Store.CreatePost(caller, req.Content, req.Uploads)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// New posts are announced to the author's friends.
	if friends, err := h.Store.GetFriends(caller); err == nil && len(friends) > 0 {
		h.Hub.Notify(ws.Event{
			Type:    ws.EventNewPost,
			Payload: map[string]interface{}{"author": string(caller), "id": id},
		}, friends...)
	}

	respondJSON(w, http.StatusCreated, map[string]uint64{"id": id})
}

func (h *SocialHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)
	author, postID, ok := postRef(w, r)
	if !ok {
		return
	}

	if err := h.Store.ToggleLike(caller, author, postID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *SocialHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)
	author, postID, ok := postRef(w, r)
	if !ok {
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Store.AddComment(caller, author, postID, req.Text, req.CommentorName); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *SocialHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	account := models.Account(mux.Vars(r)["account"])

	posts, err := h.Store.GetUserPosts(account)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

func (h *SocialHandler) GetPostCount(w http.ResponseWriter, r *http.Request) {
	account := models.Account(mux.Vars(r)["account"])

	count, err := h.Store.GetPostCount(account)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *SocialHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)

	feed, err := h.Store.GetFeed(caller)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, feed)
}

func (h *SocialHandler) ToggleFriend(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)
	other := models.Account(mux.Vars(r)["account"])

	friends, err := h.Store.ToggleFriend(caller, other)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"friends": friends})
}

func (h *SocialHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)

	friends, err := h.Store.GetFriends(caller)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if friends == nil {
		friends = []models.Account{}
	}
	respondJSON(w, http.StatusOK, friends)
}

func (h *SocialHandler) AreFriends(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerAccount(r)
	other := models.Account(mux.Vars(r)["account"])

	friends, err := h.Store.AreFriends(caller, other)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"friends": friends})
}

func postRef(w http.ResponseWriter, r *http.Request) (models.Account, uint64, bool) {
	vars := mux.Vars(r)
	postID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid post id", http.StatusBadRequest)
		return "", 0, false
	}
	return models.Account(vars["author"]), postID, true
}
