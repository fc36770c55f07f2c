package sqlstore

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pliu/socialite/internal/models"
	"github.com/pliu/socialite/internal/store"
)

func (s *SQLStore) CreatePost(author models.Account, content string, uploads []string) (uint64, error) {
	if uploads == nil {
		uploads = []string{}
	}
	uploadsJSON, err := json.Marshal(uploads)
	if err != nil {
		return 0, errors.Wrap(err, "sqlstore.CreatePost: marshal uploads")
	}

	var id uint64
	err = s.inTx(func(tx *sql.Tx) error {
		if ok, err := s.userExists(tx, author); err != nil {
			return err
		} else if !ok {
			return store.ErrNotRegistered
		}

		ts := s.now()
		var lastID uint64
		var lastCreated time.Time
		query := s.rebind("SELECT id, created_at FROM posts WHERE author = ? ORDER BY id DESC LIMIT 1")
		err := tx.QueryRow(query, string(author)).Scan(&lastID, &lastCreated)
		switch {
		case err == sql.ErrNoRows:
			id = 0
		case err != nil:
			return errors.Wrap(err, "sqlstore.CreatePost: last post")
		default:
			id = lastID + 1
			// Per-author timestamps never decrease.
			if ts.Before(lastCreated) {
				ts = lastCreated
			}
		}

		query = s.rebind("INSERT INTO posts (author, id, content, uploads, created_at) VALUES (?, ?, ?, ?, ?)")
		_, err = tx.Exec(query, string(author), id, content, string(uploadsJSON), ts)
		return errors.Wrap(err, "sqlstore.CreatePost: insert")
	})
	return id, err
}

func (s *SQLStore) ToggleLike(liker, author models.Account, postID uint64) error {
	return s.inTx(func(tx *sql.Tx) error {
		if ok, err := s.userExists(tx, liker); err != nil {
			return err
		} else if !ok {
			return store.ErrNotRegistered
		}
		if err := s.postExists(tx, author, postID); err != nil {
			return err
		}

		var exists bool
		query := s.rebind("SELECT EXISTS(SELECT 1 FROM post_likes WHERE author = ? AND post_id = ? AND liker = ?)")
		if err := tx.QueryRow(query, string(author), postID, string(liker)).Scan(&exists); err != nil {
			return errors.Wrap(err, "sqlstore.ToggleLike: check like")
		}

		if exists {
			query = s.rebind("DELETE FROM post_likes WHERE author = ? AND post_id = ? AND liker = ?")
			_, err := tx.Exec(query, string(author), postID, string(liker))
			return errors.Wrap(err, "sqlstore.ToggleLike: delete like")
		}
		query = s.rebind("INSERT INTO post_likes (author, post_id, liker) VALUES (?, ?, ?)")
		_, err := tx.Exec(query, string(author), postID, string(liker))
		return errors.Wrap(err, "sqlstore.ToggleLike: insert like")
	})
}

func (s *SQLStore) AddComment(commentor, author models.Account, postID uint64, text, commentorName string) error {
	if strings.TrimSpace(text) == "" {
		return store.ErrEmptyComment
	}

	return s.inTx(func(tx *sql.Tx) error {
		var name string
		query := s.rebind("SELECT name FROM users WHERE account = ?")
		err := tx.QueryRow(query, string(commentor)).Scan(&name)
		if err == sql.ErrNoRows {
			return store.ErrNotRegistered
		}
		if err != nil {
			return errors.Wrap(err, "sqlstore.AddComment: commentor name")
		}
		if commentorName == "" {
			commentorName = name
		}

		if err := s.postExists(tx, author, postID); err != nil {
			return err
		}

		query = s.rebind("INSERT INTO post_comments (author, post_id, commentor, commentor_name, text) VALUES (?, ?, ?, ?, ?)")
		_, err = tx.Exec(query, string(author), postID, string(commentor), commentorName, text)
		return errors.Wrap(err, "sqlstore.AddComment: insert")
	})
}

func (s *SQLStore) GetUserPosts(account models.Account) ([]models.Post, error) {
	query := s.rebind("SELECT author, id, content, uploads, created_at FROM posts WHERE author = ? ORDER BY id")
	return s.queryPosts(query, string(account))
}

func (s *SQLStore) GetPostCount(account models.Account) (uint64, error) {
	var count uint64
	query := s.rebind("SELECT COUNT(*) FROM posts WHERE author = ?")
	err := s.db.QueryRow(query, string(account)).Scan(&count)
	return count, errors.Wrap(err, "sqlstore.GetPostCount: count")
}

func (s *SQLStore) postExists(tx *sql.Tx, author models.Account, postID uint64) error {
	var exists bool
	query := s.rebind("SELECT EXISTS(SELECT 1 FROM posts WHERE author = ? AND id = ?)")
	if err := tx.QueryRow(query, string(author), postID).Scan(&exists); err != nil {
		return errors.Wrap(err, "sqlstore: check post exists")
	}
	if !exists {
		return store.ErrPostNotFound
	}
	return nil
}

// queryPosts runs a posts query and fills in likes and comments per post.
func (s *SQLStore) queryPosts(query string, args ...interface{}) ([]models.Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: query posts")
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		var author, uploadsJSON string
		if err := rows.Scan(&author, &p.ID, &p.Content, &uploadsJSON, &p.Timestamp); err != nil {
			return nil, errors.Wrap(err, "sqlstore: scan post")
		}
		p.Author = models.Account(author)
		if err := json.Unmarshal([]byte(uploadsJSON), &p.Uploads); err != nil {
			return nil, errors.Wrap(err, "sqlstore: unmarshal uploads")
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "sqlstore: iterate posts")
	}

	for i := range posts {
		if err := s.loadPostExtras(&posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *SQLStore) loadPostExtras(p *models.Post) error {
	query := s.rebind("SELECT liker FROM post_likes WHERE author = ? AND post_id = ? ORDER BY id")
	rows, err := s.db.Query(query, string(p.Author), p.ID)
	if err != nil {
		return errors.Wrap(err, "sqlstore: query likes")
	}
	defer rows.Close()
	p.LikedBy = []models.Account{}
	for rows.Next() {
		var liker string
		if err := rows.Scan(&liker); err != nil {
			return errors.Wrap(err, "sqlstore: scan liker")
		}
		p.LikedBy = append(p.LikedBy, models.Account(liker))
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "sqlstore: iterate likes")
	}
	p.Likes = len(p.LikedBy)

	query = s.rebind("SELECT commentor, commentor_name, text FROM post_comments WHERE author = ? AND post_id = ? ORDER BY id")
	crows, err := s.db.Query(query, string(p.Author), p.ID)
	if err != nil {
		return errors.Wrap(err, "sqlstore: query comments")
	}
	defer crows.Close()
	p.Comments = []models.Comment{}
	for crows.Next() {
		var c models.Comment
		var commentor string
		if err := crows.Scan(&commentor, &c.CommentorName, &c.Text); err != nil {
			return errors.Wrap(err, "sqlstore: scan comment")
		}
		c.Commentor = models.Account(commentor)
		p.Comments = append(p.Comments, c)
	}
	return errors.Wrap(crows.Err(), "sqlstore: iterate comments")
}
