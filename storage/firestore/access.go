package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
)

type accessRepository struct {
	client *firestore.Client
}

var _ access.Repository = (*accessRepository)(nil) // interface compliance check

func NewAccessRepository(db *DB) access.Repository {
	return &accessRepository{client: db.client}
}

func (repo *accessRepository) GetAdmin(ctx context.Context, id string) (access.Admin, error) {
	doc, err := repo.client.Collection(adminsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return access.Admin{}, access.ErrAdminNotFound
		}
		return access.Admin{}, err
	}
	var adm access.Admin
	if err := doc.DataTo(&adm); err != nil {
		return access.Admin{}, err
	}
	adm.ID = doc.Ref.ID
	return adm, nil
}

func (repo *accessRepository) UpsertAdmin(ctx context.Context, adm access.Admin) (access.Admin, error) {
	if _, err := repo.client.Collection(adminsCollection).Doc(adm.ID).Set(ctx, adm); err != nil {
		return access.Admin{}, err
	}
	return adm, nil
}

func (repo *accessRepository) QueryAllAdmins(ctx context.Context) ([]access.Admin, error) {
	iter := repo.client.Collection(adminsCollection).Documents(ctx)
	defer iter.Stop()

	admins := make([]access.Admin, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return admins, nil
		}
		if err != nil {
			return nil, err
		}
		var adm access.Admin
		if err := doc.DataTo(&adm); err != nil {
			return nil, err
		}
		adm.ID = doc.Ref.ID
		admins = append(admins, adm)
	}
}

func (repo *accessRepository) SetAdminStatus(ctx context.Context, id, status string) error {
	_, err := repo.client.Collection(adminsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
		{Path: "lastUpdated", Value: firestore.ServerTimestamp},
	})
	if isNotFound(err) {
		return access.ErrAdminNotFound
	}
	return err
}

func (repo *accessRepository) CreatePost(ctx context.Context, post access.Post) (access.Post, error) {
	ref, _, err := repo.client.Collection(postsCollection).Add(ctx, post)
	if err != nil {
		return access.Post{}, err
	}
	post.ID = ref.ID
	return post, nil
}

func (repo *accessRepository) GetPost(ctx context.Context, id string) (access.Post, error) {
	doc, err := repo.client.Collection(postsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return access.Post{}, access.ErrPostNotFound
		}
		return access.Post{}, err
	}
	var post access.Post
	if err := doc.DataTo(&post); err != nil {
		return access.Post{}, err
	}
	post.ID = doc.Ref.ID
	return post, nil
}

func (repo *accessRepository) QueryAllPosts(ctx context.Context) ([]access.Post, error) {
	iter := repo.client.Collection(postsCollection).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	posts := make([]access.Post, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return posts, nil
		}
		if err != nil {
			return nil, err
		}
		var post access.Post
		if err := doc.DataTo(&post); err != nil {
			return nil, err
		}
		post.ID = doc.Ref.ID
		posts = append(posts, post)
	}
}

func (repo *accessRepository) CreateGrant(ctx context.Context, grant access.UnlockGrant) (access.UnlockGrant, error) {
	ref, _, err := repo.client.Collection(grantsCollection).Add(ctx, grant)
	if err != nil {
		return access.UnlockGrant{}, err
	}
	grant.ID = ref.ID
	return grant, nil
}

func (repo *accessRepository) QueryGrantsByUser(ctx context.Context, userID string) ([]access.UnlockGrant, error) {
	iter := repo.client.Collection(grantsCollection).
		Where("userId", "==", userID).
		Documents(ctx)
	defer iter.Stop()

	grants := make([]access.UnlockGrant, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return grants, nil
		}
		if err != nil {
			return nil, err
		}
		var grant access.UnlockGrant
		if err := doc.DataTo(&grant); err != nil {
			return nil, err
		}
		grant.ID = doc.Ref.ID
		grants = append(grants, grant)
	}
}

func (repo *accessRepository) GetPassphrase(ctx context.Context) (string, error) {
	doc, err := repo.client.Collection(configCollection).Doc(passphraseDoc).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return "", nil // unset secret denies everyone
		}
		return "", err
	}
	var data struct {
		Password string `firestore:"password"`
	}
	if err := doc.DataTo(&data); err != nil {
		return "", err
	}
	return data.Password, nil
}

func (repo *accessRepository) SetPassphrase(ctx context.Context, passphrase string) error {
	_, err := repo.client.Collection(configCollection).Doc(passphraseDoc).Set(ctx, map[string]interface{}{
		"password": passphrase,
	})
	return err
}
