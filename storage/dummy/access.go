package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
)

type accessRepository struct {
	db *accessTable
}

var _ access.Repository = (*accessRepository)(nil) // interface compliance check

func NewAccessRepository(db *DB) access.Repository {
	return &accessRepository{db: db.access}
}

func (repo *accessRepository) GetAdmin(_ context.Context, id string) (access.Admin, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if adm, ok := repo.db.admins[id]; ok {
		return *adm, nil
	}
	return access.Admin{}, access.ErrAdminNotFound
}

func (repo *accessRepository) UpsertAdmin(_ context.Context, adm access.Admin) (access.Admin, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.admins[adm.ID] = &adm
	return adm, nil
}

func (repo *accessRepository) QueryAllAdmins(_ context.Context) ([]access.Admin, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	admins := make([]access.Admin, 0, len(repo.db.admins))
	for _, adm := range repo.db.admins {
		admins = append(admins, *adm)
	}
	return admins, nil
}

func (repo *accessRepository) SetAdminStatus(_ context.Context, id, status string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	adm, ok := repo.db.admins[id]
	if !ok {
		return access.ErrAdminNotFound
	}
	adm.Status = status
	return nil
}

func (repo *accessRepository) CreatePost(_ context.Context, post access.Post) (access.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	post.ID = uuid.NewString()
	repo.db.posts = append(repo.db.posts, &post)
	return post, nil
}

func (repo *accessRepository) GetPost(_ context.Context, id string) (access.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, p := range repo.db.posts {
		if p.ID == id {
			return *p, nil
		}
	}
	return access.Post{}, access.ErrPostNotFound
}

// QueryAllPosts returns posts newest first. Inserts are append-only, so
// reverse insertion order matches reverse chronological order.
func (repo *accessRepository) QueryAllPosts(_ context.Context) ([]access.Post, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	posts := make([]access.Post, 0, len(repo.db.posts))
	for i := len(repo.db.posts) - 1; i >= 0; i-- {
		posts = append(posts, *repo.db.posts[i])
	}
	return posts, nil
}

func (repo *accessRepository) CreateGrant(_ context.Context, grant access.UnlockGrant) (access.UnlockGrant, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	grant.ID = uuid.NewString()
	repo.db.grants = append(repo.db.grants, &grant)
	return grant, nil
}

func (repo *accessRepository) QueryGrantsByUser(_ context.Context, userID string) ([]access.UnlockGrant, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grants := make([]access.UnlockGrant, 0)
	for _, g := range repo.db.grants {
		if g.UserID == userID {
			grants = append(grants, *g)
		}
	}
	return grants, nil
}

func (repo *accessRepository) GetPassphrase(_ context.Context) (string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.passphrase, nil
}

func (repo *accessRepository) SetPassphrase(_ context.Context, passphrase string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.passphrase = passphrase
	return nil
}
