package sqlstore

import (
	"testing"
	"time"
)

func TestGetFeed(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	registerTestUser(t, "0x1", "Alice")
	registerTestUser(t, "0x2", "Bob")
	registerTestUser(t, "0x3", "Charlie")

	clock := time.Unix(1, 0)
	testStore.now = func() time.Time { return clock }

	testStore.CreatePost("0x1", "alice t=1", nil)
	clock = time.Unix(2, 0)
	testStore.CreatePost("0x2", "bob t=2", nil)
	clock = time.Unix(3, 0)
	testStore.CreatePost("0x1", "alice t=3", nil)
	clock = time.Unix(4, 0)
	testStore.CreatePost("0x3", "charlie t=4", nil) // not a friend

	testStore.ToggleFriend("0x1", "0x2")

	feed, err := testStore.GetFeed("0x1")
	if err != nil {
		t.Fatalf("GetFeed failed: %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("Expected 3 posts in feed, got %d", len(feed))
	}
	want := []string{"alice t=3", "bob t=2", "alice t=1"}
	for i, w := range want {
		if feed[i].Content != w {
			t.Errorf("feed[%d]: expected %q, got %q", i, w, feed[i].Content)
		}
	}
}

func TestGetFeedTieBreak(t *testing.T) {
	SetupTestDB(t)
	defer TeardownTestDB()

	registerTestUser(t, "0x1", "Alice")
	registerTestUser(t, "0x2", "Bob")

	testStore.now = func() time.Time { return time.Unix(7, 0) }
	testStore.CreatePost("0x2", "bob 0", nil)
	testStore.CreatePost("0x1", "alice 0", nil)
	testStore.CreatePost("0x1", "alice 1", nil)
	testStore.ToggleFriend("0x1", "0x2")

	// Equal timestamps order by (author, post id) ascending
	feed, err := testStore.GetFeed("0x1")
	if err != nil {
		t.Fatalf("GetFeed failed: %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("Expected 3 posts in feed, got %d", len(feed))
	}
	want := []string{"alice 0", "alice 1", "bob 0"}
	for i, w := range want {
		if feed[i].Content != w {
			t.Errorf("feed[%d]: expected %q, got %q", i, w, feed[i].Content)
		}
	}
}
