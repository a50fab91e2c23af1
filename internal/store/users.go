package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/Amir-Wake/Ebookd/internal/domain"
)

// GetUser retrieves a user document by account ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := s.get(userKey(id), &user)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// EnsureUser returns the user document for an account, creating it with the
// default role on first sight. Creation is transactional so two concurrent
// first requests produce exactly one document.
func (s *Store) EnsureUser(ctx context.Context, id, email string) (*domain.User, error) {
	key := userKey(id)

	var user domain.User
	err := s.update(func(txn *badger.Txn) error {
		err := txnGet(txn, key, &user)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		user = domain.User{Email: email, Role: domain.RoleUser}
		user.ID = id
		user.InitTimestamps()
		return txnSet(txn, key, &user)
	})
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return &user, nil
}

// UpdateUser persists changes to an existing user document.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	key := userKey(user.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	user.Touch()
	if err := s.set(key, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user updated", "id", user.ID)
	}
	return nil
}

// DeleteUser removes a user document. The user's reviews are left in place:
// they still count toward the aggregates they were folded into.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	key := userKey(id)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	err = s.update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("user deleted", "id", id)
	}
	return nil
}

// ListUsers returns all user documents.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	var users []*domain.User

	prefix := []byte(userPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var user domain.User
				if err := json.Unmarshal(val, &user); err != nil {
					return err
				}
				users = append(users, &user)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}
