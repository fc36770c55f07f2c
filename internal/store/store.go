package store

import "github.com/pliu/socialite/internal/models"

// Store is the authoritative social-and-messaging state machine. Every
// caller-scoped operation takes the caller's account explicitly; there is
// no ambient identity and no process-wide instance. Mutations either apply
// all of their index updates or none of them.
//
// Read operations are permissive: an absent subject yields an empty result
// rather than an error, except for named lookups (SearchByName,
// DeleteContact) which must find their target.
type Store interface {
	// Identity
	Register(account models.Account, name, profilePic, bio, secret string) error
	UpdateProfile(account models.Account, profilePic, bio string) error
	// GetUserProfile returns (nil, nil) for unregistered accounts.
	GetUserProfile(account models.Account) (*models.User, error)
	CheckPassword(account models.Account, secret string) (bool, error)
	SearchByName(name string) (*models.User, error)

	// Friends
	// ToggleFriend flips the symmetric friend edge and returns the
	// resulting membership (true = now friends).
	ToggleFriend(caller, other models.Account) (bool, error)
	GetFriends(caller models.Account) ([]models.Account, error)
	AreFriends(a, b models.Account) (bool, error)

	// Posts
	CreatePost(author models.Account, content string, uploads []string) (uint64, error)
	ToggleLike(liker, author models.Account, postID uint64) error
	AddComment(commentor, author models.Account, postID uint64, text, commentorName string) error
	GetUserPosts(account models.Account) ([]models.Post, error)
	GetPostCount(account models.Account) (uint64, error)

	// Messages. SendMessage also creates the contact edge on both sides
	// if the pair has never exchanged a message; this is a documented
	// side effect, not hidden behavior.
	SendMessage(sender, receiver models.Account, content string) (*models.Message, error)
	GetMessages(caller, other models.Account) ([]models.Message, error)
	// GetConversation returns the thread split by sender; callers that
	// need a single chronological order merge the two halves themselves.
	GetConversation(a, b models.Account) (sentByA, sentByB []models.Message, err error)
	GetAllConnectedContacts(caller models.Account) ([]models.Contact, error)
	// DeleteContact removes the contact edge and purges the pair's
	// message thread on both sides.
	DeleteContact(caller, other models.Account) error

	// Feed: the caller's own posts plus all friends' posts, timestamp
	// descending, ties broken by (author, post id) ascending. Computed
	// fresh on every call.
	GetFeed(caller models.Account) ([]models.Post, error)
}
