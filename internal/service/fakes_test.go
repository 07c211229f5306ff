package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/jmadden/clubhouse/internal/domain"
	"github.com/jmadden/clubhouse/internal/store"
)

// fakeUsers is an in-memory stand-in for the members table. It mirrors
// the real store's contract: sql.ErrNoRows for a missing row, and an
// injectable failure for store-error paths.
type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.User

	failWith error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[int64]domain.User)}
}

func (f *fakeUsers) Add(ctx context.Context, user *domain.User) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	f.byID[user.ID] = *user
	return nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := u
	return &out, nil
}

func (f *fakeUsers) remove(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

type fakeMessages struct {
	mu     sync.Mutex
	nextID int64
	msgs   []domain.Message
	users  *fakeUsers

	failWith error
}

func newFakeMessages(users *fakeUsers) *fakeMessages {
	return &fakeMessages{users: users}
}

func (f *fakeMessages) Post(ctx context.Context, msg *domain.Message) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	msg.ID = f.nextID
	msg.CreatedAt = time.Now()
	f.msgs = append(f.msgs, *msg)
	return nil
}

func (f *fakeMessages) ListWithAuthor(ctx context.Context) ([]domain.MessageWithAuthor, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.MessageWithAuthor, 0, len(f.msgs))
	for _, m := range f.msgs {
		mwa := domain.MessageWithAuthor{
			ID:        m.ID,
			Title:     m.Title,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
		if u, err := f.users.GetByID(ctx, m.AuthorID); err == nil {
			name := u.FullName
			mwa.Author = &name
		}
		out = append(out, mwa)
	}
	return out, nil
}

func (f *fakeMessages) DeleteByID(ctx context.Context, id int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.msgs {
		if m.ID == id {
			f.msgs = append(f.msgs[:i], f.msgs[i+1:]...)
			return nil
		}
	}
	return nil // absent id is a no-op
}

func newFakeStorage() (store.Storage, *fakeUsers, *fakeMessages) {
	users := newFakeUsers()
	msgs := newFakeMessages(users)
	return store.Storage{Users: users, Messages: msgs}, users, msgs
}
