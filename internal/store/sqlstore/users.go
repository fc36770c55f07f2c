package sqlstore

import (
	"database/sql"

	"github.com/pkg/errors"
	"github.com/pliu/socialite/internal/models"
	"github.com/pliu/socialite/internal/store"
)

func (s *SQLStore) Register(account models.Account, name, profilePic, bio, secret string) error {
	hash, err := store.HashSecret(secret)
	if err != nil {
		return err
	}

	return s.inTx(func(tx *sql.Tx) error {
		var exists bool
		query := s.rebind("SELECT EXISTS(SELECT 1 FROM users WHERE account = ?)")
		if err := tx.QueryRow(query, string(account)).Scan(&exists); err != nil {
			return errors.Wrap(err, "sqlstore.Register: check account")
		}
		if exists {
			return store.ErrAlreadyRegistered
		}

		if name == "" {
			return store.ErrNameTaken
		}
		query = s.rebind("SELECT EXISTS(SELECT 1 FROM users WHERE name = ?)")
		if err := tx.QueryRow(query, name).Scan(&exists); err != nil {
			return errors.Wrap(err, "sqlstore.Register: check name")
		}
		if exists {
			return store.ErrNameTaken
		}

		// The EXISTS checks race under concurrent registration; the
		// unique indexes decide the winner, so map their violations
		// back onto the taxonomy.
		query = s.rebind("INSERT INTO users (account, name, password_hash, profile_pic, bio) VALUES (?, ?, ?, ?, ?)")
		_, err := tx.Exec(query, string(account), name, hash, profilePic, bio)
		switch {
		case err == nil:
			return nil
		case uniqueViolation(err, "users_pkey", "users.account"):
			return store.ErrAlreadyRegistered
		case uniqueViolation(err, "users_name_key", "users.name"):
			return store.ErrNameTaken
		}
		return errors.Wrap(err, "sqlstore.Register: insert user")
	})
}

func (s *SQLStore) UpdateProfile(account models.Account, profilePic, bio string) error {
	query := s.rebind("UPDATE users SET profile_pic = ?, bio = ? WHERE account = ?")
	result, err := s.db.Exec(query, profilePic, bio, string(account))
	if err != nil {
		return errors.Wrap(err, "sqlstore.UpdateProfile: update")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "sqlstore.UpdateProfile: rows affected")
	}
	if rows == 0 {
		return store.ErrNotRegistered
	}
	return nil
}

func (s *SQLStore) GetUserProfile(account models.Account) (*models.User, error) {
	u, err := s.getUser(string(account))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (s *SQLStore) CheckPassword(account models.Account, secret string) (bool, error) {
	var hash string
	query := s.rebind("SELECT password_hash FROM users WHERE account = ?")
	err := s.db.QueryRow(query, string(account)).Scan(&hash)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "sqlstore.CheckPassword: select hash")
	}
	return store.VerifySecret(hash, secret), nil
}

func (s *SQLStore) SearchByName(name string) (*models.User, error) {
	var user models.User
	var account string
	query := s.rebind("SELECT account, name, password_hash, profile_pic, bio FROM users WHERE name = ?")
	err := s.db.QueryRow(query, name).Scan(&account, &user.Name, &user.PasswordHash, &user.ProfilePic, &user.Bio)
	if err == sql.ErrNoRows {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore.SearchByName: select")
	}
	user.Account = models.Account(account)
	return &user, nil
}

func (s *SQLStore) getUser(account string) (*models.User, error) {
	var user models.User
	var acct string
	query := s.rebind("SELECT account, name, password_hash, profile_pic, bio FROM users WHERE account = ?")
	err := s.db.QueryRow(query, account).Scan(&acct, &user.Name, &user.PasswordHash, &user.ProfilePic, &user.Bio)
	if err != nil {
		return nil, err
	}
	user.Account = models.Account(acct)
	return &user, nil
}

func (s *SQLStore) userExists(tx *sql.Tx, account models.Account) (bool, error) {
	var exists bool
	query := s.rebind("SELECT EXISTS(SELECT 1 FROM users WHERE account = ?)")
	err := tx.QueryRow(query, string(account)).Scan(&exists)
	return exists, errors.Wrap(err, "sqlstore: check user exists")
}
