// Package memstore is the in-memory reference implementation of
// store.Store. A single RWMutex serializes all mutations, which gives
// every operation the all-or-nothing semantics the interface requires;
// reads run under the read lock and return copies, so a feed computation
// always observes a consistent snapshot.
package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pliu/socialite/internal/models"
	"github.com/pliu/socialite/internal/store"
)

type post struct {
	content   string
	uploads   []string
	timestamp time.Time
	likedBy   []models.Account
	comments  []models.Comment
}

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users map[models.Account]*models.User
	names map[string]models.Account

	// friends holds both directions of every edge, in insertion order.
	friends map[models.Account][]models.Account

	// posts[author][i] is the post with id i; ids are dense per author.
	posts map[models.Account][]*post

	// threads[owner][peer] duplicates each message under both
	// participants so either side lists the thread without a scan.
	threads  map[models.Account]map[models.Account][]models.Message
	contacts map[models.Account][]models.Account
}

func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[models.Account]*models.User),
		names:    make(map[string]models.Account),
		friends:  make(map[models.Account][]models.Account),
		posts:    make(map[models.Account][]*post),
		threads:  make(map[models.Account]map[models.Account][]models.Message),
		contacts: make(map[models.Account][]models.Account),
	}
}

// Identity

func (s *Store) Register(account models.Account, name, profilePic, bio, secret string) error {
	hash, err := store.HashSecret(secret)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[account]; ok {
		return store.ErrAlreadyRegistered
	}
	if name == "" {
		return store.ErrNameTaken
	}
	if _, ok := s.names[name]; ok {
		return store.ErrNameTaken
	}

	s.users[account] = &models.User{
		Account:      account,
		Name:         name,
		PasswordHash: hash,
		ProfilePic:   profilePic,
		Bio:          bio,
	}
	s.names[name] = account
	return nil
}

func (s *Store) UpdateProfile(account models.Account, profilePic, bio string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[account]
	if !ok {
		return store.ErrNotRegistered
	}
	u.ProfilePic = profilePic
	u.Bio = bio
	return nil
}

func (s *Store) GetUserProfile(account models.Account) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[account]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) CheckPassword(account models.Account, secret string) (bool, error) {
	s.mu.RLock()
	u, ok := s.users[account]
	var hash string
	if ok {
		hash = u.PasswordHash
	}
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	return store.VerifySecret(hash, secret), nil
}

func (s *Store) SearchByName(name string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.names[name]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *s.users[account]
	return &cp, nil
}

// Friends

func (s *Store) ToggleFriend(caller, other models.Account) (bool, error) {
	if caller == other {
		return false, store.ErrInvalidTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[caller]; !ok {
		return false, store.ErrNotRegistered
	}
	if _, ok := s.users[other]; !ok {
		return false, store.ErrUserNotFound
	}

	if containsAccount(s.friends[caller], other) {
		s.friends[caller] = removeAccount(s.friends[caller], other)
		s.friends[other] = removeAccount(s.friends[other], caller)
		return false, nil
	}
	s.friends[caller] = append(s.friends[caller], other)
	s.friends[other] = append(s.friends[other], caller)
	return true, nil
}

func (s *Store) GetFriends(caller models.Account) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Account(nil), s.friends[caller]...), nil
}

func (s *Store) AreFriends(a, b models.Account) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return containsAccount(s.friends[a], b), nil
}

// Posts

func (s *Store) CreatePost(author models.Account, content string, uploads []string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[author]; !ok {
		return 0, store.ErrNotRegistered
	}

	ts := s.now()
	if prev := s.posts[author]; len(prev) > 0 {
		// Timestamps are non-decreasing per author even if the clock
		// steps backwards.
		if last := prev[len(prev)-1].timestamp; ts.Before(last) {
			ts = last
		}
	}

	id := uint64(len(s.posts[author]))
	s.posts[author] = append(s.posts[author], &post{
		content:   content,
		uploads:   append([]string(nil), uploads...),
		timestamp: ts,
	})
	return id, nil
}

func (s *Store) ToggleLike(liker, author models.Account, postID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[liker]; !ok {
		return store.ErrNotRegistered
	}
	p, err := s.findPost(author, postID)
	if err != nil {
		return err
	}

	if containsAccount(p.likedBy, liker) {
		p.likedBy = removeAccount(p.likedBy, liker)
	} else {
		p.likedBy = append(p.likedBy, liker)
	}
	return nil
}

func (s *Store) AddComment(commentor, author models.Account, postID uint64, text, commentorName string) error {
	if strings.TrimSpace(text) == "" {
		return store.ErrEmptyComment
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[commentor]
	if !ok {
		return store.ErrNotRegistered
	}
	p, err := s.findPost(author, postID)
	if err != nil {
		return err
	}

	if commentorName == "" {
		commentorName = u.Name
	}
	p.comments = append(p.comments, models.Comment{
		Commentor:     commentor,
		CommentorName: commentorName,
		Text:          text,
	})
	return nil
}

func (s *Store) GetUserPosts(account models.Account) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.posts[account]
	out := make([]models.Post, 0, len(list))
	for i, p := range list {
		out = append(out, postView(account, uint64(i), p))
	}
	return out, nil
}

func (s *Store) GetPostCount(account models.Account) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.posts[account])), nil
}

// Messages

func (s *Store) SendMessage(sender, receiver models.Account, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, store.ErrEmptyMessage
	}
	if sender == receiver {
		return nil, store.ErrInvalidTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[sender]; !ok {
		return nil, store.ErrNotRegistered
	}
	if _, ok := s.users[receiver]; !ok {
		return nil, store.ErrUserNotFound
	}

	msg := models.Message{
		ID:        uuid.New(),
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		Timestamp: s.now(),
	}
	s.appendMessage(sender, receiver, msg)
	s.appendMessage(receiver, sender, msg)

	if !containsAccount(s.contacts[sender], receiver) {
		s.contacts[sender] = append(s.contacts[sender], receiver)
		s.contacts[receiver] = append(s.contacts[receiver], sender)
	}
	return &msg, nil
}

func (s *Store) appendMessage(owner, peer models.Account, msg models.Message) {
	if s.threads[owner] == nil {
		s.threads[owner] = make(map[models.Account][]models.Message)
	}
	s.threads[owner][peer] = append(s.threads[owner][peer], msg)
}

func (s *Store) GetMessages(caller, other models.Account) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Message(nil), s.threads[caller][other]...), nil
}

func (s *Store) GetConversation(a, b models.Account) ([]models.Message, []models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sentByA, sentByB []models.Message
	for _, m := range s.threads[a][b] {
		if m.Sender == a {
			sentByA = append(sentByA, m)
		} else {
			sentByB = append(sentByB, m)
		}
	}
	return sentByA, sentByB, nil
}

func (s *Store) GetAllConnectedContacts(caller models.Account) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Contact, 0, len(s.contacts[caller]))
	for _, a := range s.contacts[caller] {
		c := models.Contact{Account: a}
		if u, ok := s.users[a]; ok {
			c.Name = u.Name
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) DeleteContact(caller, other models.Account) error {
	if caller == other {
		return store.ErrInvalidTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !containsAccount(s.contacts[caller], other) {
		return store.ErrNotConnected
	}

	s.contacts[caller] = removeAccount(s.contacts[caller], other)
	s.contacts[other] = removeAccount(s.contacts[other], caller)
	delete(s.threads[caller], other)
	delete(s.threads[other], caller)
	return nil
}

// Feed

func (s *Store) GetFeed(caller models.Account) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	authors := append([]models.Account{caller}, s.friends[caller]...)
	var feed []models.Post
	for _, a := range authors {
		for i, p := range s.posts[a] {
			feed = append(feed, postView(a, uint64(i), p))
		}
	}

	sort.SliceStable(feed, func(i, j int) bool {
		if !feed[i].Timestamp.Equal(feed[j].Timestamp) {
			return feed[i].Timestamp.After(feed[j].Timestamp)
		}
		if feed[i].Author != feed[j].Author {
			return feed[i].Author < feed[j].Author
		}
		return feed[i].ID < feed[j].ID
	})
	return feed, nil
}

// Helpers

func (s *Store) findPost(author models.Account, postID uint64) (*post, error) {
	list := s.posts[author]
	if postID >= uint64(len(list)) {
		return nil, store.ErrPostNotFound
	}
	return list[postID], nil
}

func postView(author models.Account, id uint64, p *post) models.Post {
	return models.Post{
		ID:        id,
		Author:    author,
		Content:   p.content,
		Uploads:   append([]string(nil), p.uploads...),
		Timestamp: p.timestamp,
		Likes:     len(p.likedBy),
		LikedBy:   append([]models.Account(nil), p.likedBy...),
		Comments:  append([]models.Comment(nil), p.comments...),
	}
}

func containsAccount(list []models.Account, target models.Account) bool {
	for _, a := range list {
		if a == target {
			return true
		}
	}
	return false
}

func removeAccount(list []models.Account, target models.Account) []models.Account {
	out := list[:0]
	for _, a := range list {
		if a != target {
			out = append(out, a)
		}
	}
	return out
}
