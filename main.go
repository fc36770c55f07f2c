package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pliu/socialite/config"
	"github.com/pliu/socialite/internal/auth"
	"github.com/pliu/socialite/internal/handlers"
	"github.com/pliu/socialite/internal/middleware"
	"github.com/pliu/socialite/internal/models"
	"github.com/pliu/socialite/internal/store"
	"github.com/pliu/socialite/internal/store/memstore"
	"github.com/pliu/socialite/internal/store/sqlstore"
	"github.com/pliu/socialite/internal/ws"
)

var configPath = flag.String("config", ".", "directory containing config.yaml")

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	auth.SetSecret(cfg.Auth.CookieSecret)

	st, err := openStore(cfg.Store)
	if err != nil {
		log.Fatal(err)
	}

	hub := ws.NewHub(st)
	go hub.Run()

	authHandler := &handlers.AuthHandler{Store: st, Hub: hub}
	socialHandler := &handlers.SocialHandler{Store: st, Hub: hub}
	messageHandler := &handlers.MessageHandler{Store: st, Hub: hub}

	r := mux.NewRouter()
	r.Use(loggingMiddleware)

	// Public endpoints
	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/users/search", authHandler.SearchUser).Methods("GET")
	r.HandleFunc("/users/{account}", authHandler.GetProfile).Methods("GET")
	r.HandleFunc("/users/{account}/posts", socialHandler.GetUserPosts).Methods("GET")
	r.HandleFunc("/users/{account}/posts/count", socialHandler.GetPostCount).Methods("GET")

	// Caller-scoped endpoints
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

	// WebSocket endpoint
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("account")
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		account, err := auth.VerifyCookie(cookie.Value)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ws.ServeWs(hub, w, r, models.Account(account))
	})

	log.Println("Starting server on", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, r))
}

func openStore(cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return memstore.New(), nil
	case "sqlite3", "postgres":
		return sqlstore.New(cfg.Driver, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}
