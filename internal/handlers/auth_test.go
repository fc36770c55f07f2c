package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pliu/socialite/internal/models"
)

func TestRegisterHandler(t *testing.T) {
	st := newTestStore(t)
	r := testRouter(st)

	body := RegisterRequest{Name: "Alice", ProfilePic: "ipfs://pic", Bio: "hi", Password: "pw1"}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, "POST", "/register", body))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["account"] == "" {
		t.Error("expected a minted account in the response")
	}
	if len(rr.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}

	// Same name from another caller conflicts
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, "POST", "/register", body))
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate name, got %d", rr.Code)
	}

	// Same account registering twice conflicts
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, "POST", "/register", RegisterRequest{
		Account: resp["account"], Name: "Other", Password: "pw2",
	}))
	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate account, got %d", rr.Code)
	}
}

func TestLoginHandler(t *testing.T) {
	st := newTestStore(t)
	r := testRouter(st)
	registerAccount(t, st, "0x1", "Alice")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, "POST", "/login", Credentials{Name: "Alice", Password: "pw-Alice"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(rr.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}

	var user models.User
	if err := json.Unmarshal(rr.Body.Bytes(), &user); err != nil {
		t.Fatal(err)
	}
	if user.Account != "0x1" {
		t.Errorf("expected account 0x1, got %s", user.Account)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, "POST", "/login", Credentials{Name: "Alice", Password: "wrong"}))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, "POST", "/login", Credentials{Name: "Nobody", Password: "pw"}))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown name, got %d", rr.Code)
	}
}

func TestSearchUserHandler(t *testing.T) {
	st := newTestStore(t)
	r := testRouter(st)
	registerAccount(t, st, "0x1", "Alice")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, "GET", "/users/search?name=Alice", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, "GET", "/users/search?name=Alibaba", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestProfileHandlers(t *testing.T) {
	st := newTestStore(t)
	r := testRouter(st)
	registerAccount(t, st, "0x1", "Alice")

	rr := httptest.NewRecorder()
	req := asAccount(jsonRequest(t, "PUT", "/profile", map[string]string{
		"profile_pic": "ipfs://new", "bio": "updated",
	}), "0x1")
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, "GET", "/users/0x1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var user models.User
	json.Unmarshal(rr.Body.Bytes(), &user)
	if user.Bio != "updated" {
		t.Errorf("expected updated bio, got %q", user.Bio)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, "GET", "/users/0xmissing", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unregistered account, got %d", rr.Code)
	}

	// No session cookie
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(t, "PUT", "/profile", map[string]string{"bio": "x"}))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without session, got %d", rr.Code)
	}
}
