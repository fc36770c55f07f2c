package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pliu/socialite/internal/models"
)

func TestSendMessageHandler(t *testing.T) {
	st := newTestStore(t)
	r := testRouter(st)
	registerAccount(t, st, "0x1", "Alice")
	registerAccount(t, st, "0x2", "Bob")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, asAccount(jsonRequest(t, "POST", "/messages", SendMessageRequest{
		To: "0x2", Content: "hey bob",
	}), "0x1"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var msg models.Message
	json.Unmarshal(rr.Body.Bytes(), &msg)
	if msg.Sender != "0x1" || msg.Receiver != "0x2" || msg.Content != "hey bob" {
		t.Errorf("unexpected message: %+v", msg)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, asAccount(jsonRequest(t, "POST", "/messages", SendMessageRequest{
		To: "0x2", Content: "",
	}), "0x1"))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty message, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, asAccount(jsonRequest(t, "POST", "/messages", SendMessageRequest{
		To: "0xnobody", Content: "hello?",
	}), "0x1"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown receiver, got %d", rr.Code)
	}
}

func TestGetMessagesHandler(t *testing.T) {
	st := newTestStore(t)
	r := testRouter(st)
	registerAccount(t, st, "0x1", "Alice")
	registerAccount(t, st, "0x2", "Bob")

	if _, err := st.SendMessage("0x1", "0x2", "one"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.SendMessage("0x2", "0x1", "two"); err != nil {
		t.Fatal(err)
	}

	// Both participants see the same thread.
	views := []struct {
		caller models.Account
		peer   string
	}{
		{"0x1", "0x2"},
		{"0x2", "0x1"},
	}
	for _, v := range views {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, asAccount(jsonRequest(t, "GET", "/messages/"+v.peer, nil), v.caller))
		var msgs []models.Message
		json.Unmarshal(rr.Body.Bytes(), &msgs)
		if len(msgs) != 2 {
			t.Fatalf("%s: expected 2 messages, got %d", v.caller, len(msgs))
		}
		if msgs[0].Content != "one" || msgs[1].Content != "two" {
			t.Errorf("%s: messages out of order: %v", v.caller, msgs)
		}
	}
}

func TestGetConversationHandler(t *testing.T) {
	st := newTestStore(t)
	r := testRouter(st)
	registerAccount(t, st, "0x1", "Alice")
	registerAccount(t, st, "0x2", "Bob")

	st.SendMessage("0x1", "0x2", "first")
	st.SendMessage("0x2", "0x1", "second")
	st.SendMessage("0x1", "0x2", "third")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, asAccount(jsonRequest(t, "GET", "/conversations/0x2", nil), "0x1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var conv map[string][]models.Message
	json.Unmarshal(rr.Body.Bytes(), &conv)
	if len(conv["sent"]) != 2 || len(conv["received"]) != 1 {
		t.Fatalf("expected 2 sent / 1 received, got %d / %d", len(conv["sent"]), len(conv["received"]))
	}
	if conv["sent"][0].Content != "first" || conv["sent"][1].Content != "third" {
		t.Errorf("unexpected sent messages: %v", conv["sent"])
	}
	if conv["received"][0].Content != "second" {
		t.Errorf("unexpected received messages: %v", conv["received"])
	}
}

func TestContactHandlers(t *testing.T) {
	st := newTestStore(t)
	r := testRouter(st)
	registerAccount(t, st, "0x1", "Alice")
	registerAccount(t, st, "0x2", "Bob")

	// No contacts before any exchange.
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, asAccount(jsonRequest(t, "GET", "/contacts", nil), "0x1"))
	var contacts []models.Contact
	json.Unmarshal(rr.Body.Bytes(), &contacts)
	if len(contacts) != 0 {
		t.Fatalf("expected no contacts, got %v", contacts)
	}

	st.SendMessage("0x1", "0x2", "hello")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, asAccount(jsonRequest(t, "GET", "/contacts", nil), "0x1"))
	json.Unmarshal(rr.Body.Bytes(), &contacts)
	if len(contacts) != 1 || contacts[0].Account != "0x2" || contacts[0].Name != "Bob" {
		t.Fatalf("expected Bob as contact, got %v", contacts)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, asAccount(jsonRequest(t, "DELETE", "/contacts/0x2", nil), "0x1"))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}

	// The other side's thread is gone too.
	msgs, err := st.GetMessages("0x2", "0x1")
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected cascade delete, got %v", msgs)
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, asAccount(jsonRequest(t, "DELETE", "/contacts/0x2", nil), "0x1"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 deleting absent contact, got %d", rr.Code)
	}
}
