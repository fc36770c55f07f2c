package sqlstore

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pliu/socialite/internal/models"
	"github.com/pliu/socialite/internal/store"
)

func (s *SQLStore) SendMessage(sender, receiver models.Account, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, store.ErrEmptyMessage
	}
	if sender == receiver {
		return nil, store.ErrInvalidTarget
	}

	msg := &models.Message{
		ID:        uuid.New(),
		Sender:    sender,
		Receiver:  receiver,
		Content:   content,
		Timestamp: s.now(),
	}

	err := s.inTx(func(tx *sql.Tx) error {
		if ok, err := s.userExists(tx, sender); err != nil {
			return err
		} else if !ok {
			return store.ErrNotRegistered
		}
		if ok, err := s.userExists(tx, receiver); err != nil {
			return err
		} else if !ok {
			return store.ErrUserNotFound
		}

		// One row per participant's index.
		query := s.rebind("INSERT INTO messages (id, owner, peer, sender, receiver, content, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
		for _, side := range [][2]models.Account{{sender, receiver}, {receiver, sender}} {
			_, err := tx.Exec(query, msg.ID.String(), string(side[0]), string(side[1]),
				string(sender), string(receiver), content, msg.Timestamp)
			if err != nil {
				return errors.Wrap(err, "sqlstore.SendMessage: insert")
			}
		}

		var connected bool
		query = s.rebind("SELECT EXISTS(SELECT 1 FROM contacts WHERE account = ? AND peer = ?)")
		if err := tx.QueryRow(query, string(sender), string(receiver)).Scan(&connected); err != nil {
			return errors.Wrap(err, "sqlstore.SendMessage: check contact")
		}
		if !connected {
			// A concurrent first message may have connected the pair
			// already; that is the state we want, so the violation is
			// benign.
			query = s.rebind("INSERT INTO contacts (account, peer) VALUES (?, ?)")
			if _, err := tx.Exec(query, string(sender), string(receiver)); err != nil {
				if !uniqueViolation(err, "contacts_account_peer_key", "contacts.account") {
					return errors.Wrap(err, "sqlstore.SendMessage: insert contact")
				}
			}
			if _, err := tx.Exec(query, string(receiver), string(sender)); err != nil {
				if !uniqueViolation(err, "contacts_account_peer_key", "contacts.account") {
					return errors.Wrap(err, "sqlstore.SendMessage: insert reverse contact")
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *SQLStore) GetMessages(caller, other models.Account) ([]models.Message, error) {
	query := s.rebind("SELECT id, sender, receiver, content, created_at FROM messages WHERE owner = ? AND peer = ? ORDER BY seq")
	return s.queryMessages(query, string(caller), string(other))
}

func (s *SQLStore) GetConversation(a, b models.Account) ([]models.Message, []models.Message, error) {
	thread, err := s.GetMessages(a, b)
	if err != nil {
		return nil, nil, err
	}

	var sentByA, sentByB []models.Message
	for _, m := range thread {
		if m.Sender == a {
			sentByA = append(sentByA, m)
		} else {
			sentByB = append(sentByB, m)
		}
	}
	return sentByA, sentByB, nil
}

func (s *SQLStore) GetAllConnectedContacts(caller models.Account) ([]models.Contact, error) {
	query := s.rebind(`
		SELECT c.peer, COALESCE(u.name, '')
		FROM contacts c
		LEFT JOIN users u ON u.account = c.peer
		WHERE c.account = ?
		ORDER BY c.id
	`)
	rows, err := s.db.Query(query, string(caller))
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore.GetAllConnectedContacts: select")
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		var peer string
		if err := rows.Scan(&peer, &c.Name); err != nil {
			return nil, errors.Wrap(err, "sqlstore.GetAllConnectedContacts: scan")
		}
		c.Account = models.Account(peer)
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (s *SQLStore) DeleteContact(caller, other models.Account) error {
	if caller == other {
		return store.ErrInvalidTarget
	}

	return s.inTx(func(tx *sql.Tx) error {
		var connected bool
		query := s.rebind("SELECT EXISTS(SELECT 1 FROM contacts WHERE account = ? AND peer = ?)")
		if err := tx.QueryRow(query, string(caller), string(other)).Scan(&connected); err != nil {
			return errors.Wrap(err, "sqlstore.DeleteContact: check contact")
		}
		if !connected {
			return store.ErrNotConnected
		}

		query = s.rebind("DELETE FROM contacts WHERE (account = ? AND peer = ?) OR (account = ? AND peer = ?)")
		if _, err := tx.Exec(query, string(caller), string(other), string(other), string(caller)); err != nil {
			return errors.Wrap(err, "sqlstore.DeleteContact: delete contact")
		}

		query = s.rebind("DELETE FROM messages WHERE (owner = ? AND peer = ?) OR (owner = ? AND peer = ?)")
		if _, err := tx.Exec(query, string(caller), string(other), string(other), string(caller)); err != nil {
			return errors.Wrap(err, "sqlstore.DeleteContact: purge thread")
		}
		return nil
	})
}

func (s *SQLStore) queryMessages(query string, args ...interface{}) ([]models.Message, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: query messages")
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		var id, sender, receiver string
		if err := rows.Scan(&id, &sender, &receiver, &m.Content, &m.Timestamp); err != nil {
			return nil, errors.Wrap(err, "sqlstore: scan message")
		}
		ref, err := uuid.Parse(id)
		if err != nil {
			return nil, errors.Wrap(err, "sqlstore: parse message id")
		}
		m.ID = ref
		m.Sender = models.Account(sender)
		m.Receiver = models.Account(receiver)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
