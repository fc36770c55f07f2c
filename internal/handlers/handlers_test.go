package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/pliu/socialite/internal/auth"
	"github.com/pliu/socialite/internal/middleware"
	"github.com/pliu/socialite/internal/models"
	"github.com/pliu/socialite/internal/store"
	"github.com/pliu/socialite/internal/store/memstore"
)

// testRouter wires the handlers the same way main does, against the
// in-memory backend and without a hub.
func testRouter(st store.Store) *mux.Router {
	authHandler := &AuthHandler{Store: st}
	socialHandler := &SocialHandler{Store: st}
	messageHandler := &MessageHandler{Store: st}

	r := mux.NewRouter()
	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/users/search", authHandler.SearchUser).Methods("GET")
	r.HandleFunc("/users/{account}", authHandler.GetProfile).Methods("GET")
	r.HandleFunc("/users/{account}/posts", socialHandler.GetUserPosts).Methods("GET")
	r.HandleFunc("/users/{account}/posts/count", socialHandler.GetPostCount).Methods("GET")

	s := r.NewRoute().Subrouter()
	s.Use(middleware.AuthMiddleware)
	s.HandleFunc("/profile", authHandler.UpdateProfile).Methods("PUT")
	s.HandleFunc("/posts", socialHandler.CreatePost).Methods("POST")
	s.HandleFunc("/posts/{author}/{id}/like", socialHandler.ToggleLike).Methods("POST")
	s.HandleFunc("/posts/{author}/{id}/comments", socialHandler.AddComment).Methods("POST")
	s.HandleFunc("/feed", socialHandler.GetFeed).Methods("GET")
	s.HandleFunc("/friends", socialHandler.GetFriends).Methods("GET")
	s.HandleFunc("/friends/{account}", socialHandler.ToggleFriend).Methods("POST")
	s.HandleFunc("/friends/{account}", socialHandler.AreFriends).Methods("GET")
	s.HandleFunc("/messages", messageHandler.Send).Methods("POST")
	s.HandleFunc("/messages/{account}", messageHandler.GetMessages).Methods("GET")
	s.HandleFunc("/conversations/{account}", messageHandler.GetConversation).Methods("GET")
	s.HandleFunc("/contacts", messageHandler.GetContacts).Methods("GET")
	s.HandleFunc("/contacts/{account}", messageHandler.DeleteContact).Methods("DELETE")
	return r
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	return memstore.New()
}

func registerAccount(t *testing.T, st store.Store, account models.Account, name string) {
	t.Helper()
	if err := st.Register(account, name, "", "", "pw-"+name); err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
}

func jsonRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func asAccount(req *http.Request, account models.Account) *http.Request {
	req.AddCookie(&http.Cookie{Name: "account", Value: auth.SignCookie(string(account))})
	return req
}
