package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the opaque, globally unique identity key for a user.
// Callers may bring their own token (e.g. a wallet address); the server
// mints a uuid for callers that don't.
type Account string

type User struct {
	Account      Account `json:"account"`
	Name         string  `json:"name"`
	PasswordHash string  `json:"-"`
	ProfilePic   string  `json:"profile_pic"`
	Bio          string  `json:"bio"`
}

type Comment struct {
	Commentor     Account `json:"commentor"`
	CommentorName string  `json:"commentor_name"`
	Text          string  `json:"text"`
}

// Post ids are assigned sequentially per author starting at 0, so a post
// is addressed by the (author, id) pair.
type Post struct {
	ID        uint64    `json:"id"`
	Author    Account   `json:"author"`
	Content   string    `json:"content"`
	Uploads   []string  `json:"uploads"`
	Timestamp time.Time `json:"timestamp"`
	Likes     int       `json:"likes"`
	LikedBy   []Account `json:"liked_by"`
	Comments  []Comment `json:"comments"`
}

type Message struct {
	ID        uuid.UUID `json:"id"`
	Sender    Account   `json:"sender"`
	Receiver  Account   `json:"receiver"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Contact is one entry of an account's messaging history index.
type Contact struct {
	Account Account `json:"account"`
	Name    string  `json:"name"`
}
