package sqlstore

import "github.com/pliu/socialite/internal/models"

// GetFeed returns the caller's own posts plus all friends' posts, newest
// first. The (author, id) tie-break keeps the order deterministic when
// timestamps collide.
func (s *SQLStore) GetFeed(caller models.Account) ([]models.Post, error) {
	query := s.rebind(`
		SELECT author, id, content, uploads, created_at
		FROM posts
		WHERE author = ? OR author IN (SELECT friend FROM friends WHERE account = ?)
		ORDER BY created_at DESC, author ASC, id ASC
	`)
	return s.queryPosts(query, string(caller), string(caller))
}
