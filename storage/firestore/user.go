package firestoredb

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

type userRepository struct {
	client *firestore.Client
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{client: db.client}
}

func (repo *userRepository) coll() *firestore.CollectionRef {
	return repo.client.Collection(usersCollection)
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	iter := repo.coll().Where("email", "==", email).Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		excluded := false
		for _, ex := range excludedUsers {
			if doc.Ref.ID == ex.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return user.ErrEmailExists
		}
	}
}

// CreateUser writes the user document. When the identity provider already
// assigned an id (e.g. a Firebase Auth uid) the document is keyed by it;
// otherwise Firestore picks one.
func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	ref := repo.coll().NewDoc()
	if usr.ID != "" {
		ref = repo.coll().Doc(usr.ID)
	}
	usr.ID = ref.ID
	if _, err := ref.Create(ctx, usr); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	iter := repo.coll().Documents(ctx)
	defer iter.Stop()

	users := make([]user.User, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return users, nil
		}
		if err != nil {
			return nil, err
		}
		var usr user.User
		if err := doc.DataTo(&usr); err != nil {
			return nil, err
		}
		usr.ID = doc.Ref.ID
		users = append(users, usr)
	}
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	doc, err := repo.coll().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	var usr user.User
	if err := doc.DataTo(&usr); err != nil {
		return user.User{}, err
	}
	usr.ID = doc.Ref.ID
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	iter := repo.coll().Where("email", "==", email).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, err
	}
	var usr user.User
	if err := doc.DataTo(&usr); err != nil {
		return user.User{}, err
	}
	usr.ID = doc.Ref.ID
	return usr, nil
}

// SearchUsersByName filters in memory: Firestore has no case-insensitive
// substring operator, and the roster is small.
func (repo *userRepository) SearchUsersByName(ctx context.Context, substr string) ([]user.User, error) {
	users, err := repo.QueryAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	substr = strings.ToLower(substr)
	matches := make([]user.User, 0)
	for _, usr := range users {
		if strings.Contains(strings.ToLower(usr.Name), substr) {
			matches = append(matches, usr)
		}
	}
	return matches, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if _, err := repo.coll().Doc(usr.ID).Set(ctx, usr); err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) SetAdminFlag(ctx context.Context, id string, isAdmin bool) error {
	_, err := repo.coll().Doc(id).Update(ctx, []firestore.Update{
		{Path: "isAdmin", Value: isAdmin},
	})
	if isNotFound(err) {
		return user.ErrNotFound
	}
	return err
}
