package sqlstore

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/pliu/socialite/internal/models"
	"github.com/pliu/socialite/internal/store"
)

func (s *SQLStore) ToggleFriend(caller, other models.Account) (bool, error) {
	if caller == other {
		return false, store.ErrInvalidTarget
	}

	var friendsNow bool
	err := s.inTx(func(tx *sql.Tx) error {
		if ok, err := s.userExists(tx, caller); err != nil {
			return err
		} else if !ok {
			return store.ErrNotRegistered
		}
		if ok, err := s.userExists(tx, other); err != nil {
			return err
		} else if !ok {
			return store.ErrUserNotFound
		}

		var exists bool
		query := s.rebind("SELECT EXISTS(SELECT 1 FROM friends WHERE account = ? AND friend = ?)")
		if err := tx.QueryRow(query, string(caller), string(other)).Scan(&exists); err != nil {
			return errors.Wrap(err, "sqlstore.ToggleFriend: check edge")
		}

		if exists {
			query = s.rebind("DELETE FROM friends WHERE (account = ? AND friend = ?) OR (account = ? AND friend = ?)")
			if _, err := tx.Exec(query, string(caller), string(other), string(other), string(caller)); err != nil {
				return errors.Wrap(err, "sqlstore.ToggleFriend: delete edge")
			}
			friendsNow = false
			return nil
		}

		query = s.rebind("INSERT INTO friends (account, friend) VALUES (?, ?)")
		if _, err := tx.Exec(query, string(caller), string(other)); err != nil {
			// A concurrent toggle inserted the edge first; the pair is
			// friends either way.
			if uniqueViolation(err, "friends_account_friend_key", "friends.account") {
				friendsNow = true
				return nil
			}
			return errors.Wrap(err, "sqlstore.ToggleFriend: insert edge")
		}
		if _, err := tx.Exec(query, string(other), string(caller)); err != nil {
			if !uniqueViolation(err, "friends_account_friend_key", "friends.account") {
				return errors.Wrap(err, "sqlstore.ToggleFriend: insert reverse edge")
			}
		}
		friendsNow = true
		return nil
	})
	return friendsNow, err
}

func (s *SQLStore) GetFriends(caller models.Account) ([]models.Account, error) {
	query := s.rebind("SELECT friend FROM friends WHERE account = ? ORDER BY id")
	rows, err := s.db.Query(query, string(caller))
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore.GetFriends: select")
	}
	defer rows.Close()

	var friends []models.Account
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, errors.Wrap(err, "sqlstore.GetFriends: scan")
		}
		friends = append(friends, models.Account(f))
	}
	return friends, rows.Err()
}

func (s *SQLStore) AreFriends(a, b models.Account) (bool, error) {
	var exists bool
	query := s.rebind("SELECT EXISTS(SELECT 1 FROM friends WHERE account = ? AND friend = ?)")
	err := s.db.QueryRow(query, string(a), string(b)).Scan(&exists)
	return exists, errors.Wrap(err, "sqlstore.AreFriends: check edge")
}
