package memory

import (
	"context"
	"time"

	"github.com/iliyamo/skycomfort-server/internal/repository"
)

type tokenRepo struct{ s *Store }

func (r tokenRepo) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	defer r.s.lock()()
	d := r.s.st.data
	if _, ok := d.users[userID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := d.tokens[tokenHash]; ok {
		return repository.ErrDuplicate
	}
	d.tokens[tokenHash] = tokenRow{userID: userID, expiresAt: exp}
	return nil
}

func (r tokenRepo) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	defer r.s.lock()()
	t, ok := r.s.st.data.tokens[tokenHash]
	if !ok || t.revoked || r.s.st.now().After(t.expiresAt) {
		return 0, repository.ErrNotFound
	}
	return t.userID, nil
}

func (r tokenRepo) RevokeByHash(_ context.Context, tokenHash string) (bool, error) {
	defer r.s.lock()()
	d := r.s.st.data
	t, ok := d.tokens[tokenHash]
	if !ok || t.revoked {
		return false, nil
	}
	t.revoked = true
	d.tokens[tokenHash] = t
	return true, nil
}

func (r tokenRepo) RevokeAllForUser(_ context.Context, userID uint64) error {
	defer r.s.lock()()
	d := r.s.st.data
	for h, t := range d.tokens {
		if t.userID == userID {
			t.revoked = true
			d.tokens[h] = t
		}
	}
	return nil
}
