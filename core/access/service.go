package access

import (
	"context"
	"errors"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

var (
	// errors
	ErrAdminNotFound = errors.New("admin not found")
	ErrPostNotFound  = errors.New("post not found")
	ErrDenied        = errors.New("incorrect admin passphrase")
)

type (
	Repository interface {
		GetAdmin(ctx context.Context, id string) (Admin, error)
		UpsertAdmin(ctx context.Context, adm Admin) (Admin, error)
		QueryAllAdmins(ctx context.Context) ([]Admin, error)
		SetAdminStatus(ctx context.Context, id, status string) error

		CreatePost(ctx context.Context, post Post) (Post, error)
		GetPost(ctx context.Context, id string) (Post, error)
		// QueryAllPosts returns every post, newest first.
		QueryAllPosts(ctx context.Context) ([]Post, error)

		CreateGrant(ctx context.Context, grant UnlockGrant) (UnlockGrant, error)
		QueryGrantsByUser(ctx context.Context, userID string) ([]UnlockGrant, error)

		// The shared admin passphrase lives in a single config document.
		GetPassphrase(ctx context.Context) (string, error)
		SetPassphrase(ctx context.Context, passphrase string) error
	}

	Service interface {
		IsAdmin(ctx context.Context, userID string) (bool, error)
		GetAdmin(ctx context.Context, userID string) (Admin, error)
		BecomeAdmin(ctx context.Context, userID string, ba BecomeAdmin) (Admin, error)
		ListAdmins(ctx context.Context) ([]Admin, error)
		SetAvailability(ctx context.Context, adminID, status string) error

		ListPosts(ctx context.Context, userID string) ([]ListedPost, error)
		CreatePost(ctx context.Context, np NewPost, author user.User) (Post, error)
		GrantUnlock(ctx context.Context, postID, userID, grantingAdminID string) error

		SearchUsersByName(ctx context.Context, substr string) ([]user.User, error)
		SetPassphrase(ctx context.Context, passphrase string) error
	}

	service struct {
		repo  Repository
		users user.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, users user.Service) Service {
	return &service{repo: repo, users: users}
}

// IsAdmin reports whether an Admin record exists for the user. Absence is not
// an error; only transport failures are.
func (svc *service) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if _, err := svc.repo.GetAdmin(ctx, userID); err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(err, "getting admin record")
	}
	return true, nil
}

func (svc *service) GetAdmin(ctx context.Context, userID string) (Admin, error) {
	return svc.repo.GetAdmin(ctx, userID)
}

// BecomeAdmin checks the supplied passphrase against the shared secret and, on
// match, creates the Admin record and flips the User's isAdmin flag. The two
// writes are not transactional; a crash in between leaves them inconsistent
// until the next successful attempt.
func (svc *service) BecomeAdmin(ctx context.Context, userID string, ba BecomeAdmin) (Admin, error) {
	secret, err := svc.repo.GetPassphrase(ctx)
	if err != nil {
		return Admin{}, pkgerrors.Wrap(err, "getting admin passphrase")
	}
	if secret == "" || ba.Passphrase != secret {
		return Admin{}, ErrDenied
	}

	adm, err := svc.repo.UpsertAdmin(ctx, Admin{
		ID:        userID,
		Name:      ba.Name,
		Email:     ba.Email,
		Status:    StatusOpen,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Admin{}, pkgerrors.Wrap(err, "upserting admin record")
	}
	if err = svc.users.SetAdminFlag(ctx, userID, true); err != nil {
		// the Admin record already exists at this point; see the note above
		return adm, pkgerrors.Wrap(err, "setting isAdmin flag")
	}
	return adm, nil
}

func (svc *service) ListAdmins(ctx context.Context) ([]Admin, error) {
	admins, err := svc.repo.QueryAllAdmins(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].Name < admins[j].Name })
	return admins, nil
}

func (svc *service) SetAvailability(ctx context.Context, adminID, status string) error {
	return svc.repo.SetAdminStatus(ctx, adminID, status)
}

// ListPosts returns every post newest-first, marked and stripped according to
// the caller's unlock grants: locked(P,U) == !exists grant(P.id, U.id).
func (svc *service) ListPosts(ctx context.Context, userID string) ([]ListedPost, error) {
	posts, err := svc.repo.QueryAllPosts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying posts")
	}
	grants, err := svc.repo.QueryGrantsByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "querying unlock grants")
	}

	unlocked := make(map[string]struct{}, len(grants))
	for _, g := range grants {
		unlocked[g.PostID] = struct{}{}
	}

	listed := make([]ListedPost, 0, len(posts))
	for _, p := range posts {
		lp := ListedPost{Post: p}
		if _, ok := unlocked[p.ID]; !ok {
			lp.Locked = true
			// never ship gated fields for a locked post
			lp.Content = ""
			lp.ImageURL = ""
			lp.FileLinks = nil
		}
		listed = append(listed, lp)
	}
	return listed, nil
}

func (svc *service) CreatePost(ctx context.Context, np NewPost, author user.User) (Post, error) {
	return svc.repo.CreatePost(ctx, Post{
		Title:       np.Title,
		Price:       np.Price,
		Content:     np.Content,
		ImageURL:    np.ImageURL,
		FileLinks:   np.FileLinks,
		CreatedBy:   author.Name,
		CreatedByID: author.ID,
		CreatedAt:   time.Now().UTC(),
	})
}

// GrantUnlock inserts an UnlockGrant. Repeated grants for the same (post, user)
// pair are harmless: the unlock predicate is existential.
func (svc *service) GrantUnlock(ctx context.Context, postID, userID, grantingAdminID string) error {
	if _, err := svc.repo.GetPost(ctx, postID); err != nil {
		return err
	}
	_, err := svc.repo.CreateGrant(ctx, UnlockGrant{
		PostID:     postID,
		UserID:     userID,
		UnlockedBy: grantingAdminID,
		UnlockedAt: time.Now().UTC(),
	})
	return err
}

func (svc *service) SearchUsersByName(ctx context.Context, substr string) ([]user.User, error) {
	return svc.users.SearchByName(ctx, substr)
}

func (svc *service) SetPassphrase(ctx context.Context, passphrase string) error {
	return svc.repo.SetPassphrase(ctx, passphrase)
}
