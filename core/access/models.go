package access

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
)

// Admin availability statuses.
const (
	StatusOpen = "open"
	StatusAway = "away"
)

// Admin is the roster record for an admin user; it shares its id with the User.
type Admin struct {
	ID        string    `json:"id" firestore:"-"`
	Name      string    `json:"name" firestore:"name"`
	Email     string    `json:"email" firestore:"email"`
	Status    string    `json:"status" firestore:"status"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

func (a Admin) IsAway() bool { return a.Status == StatusAway }

// FileLink is a named link to study material hosted elsewhere.
type FileLink struct {
	Name string `json:"name" firestore:"name"`
	URL  string `json:"url" firestore:"url"`
}

// Post is a priced study-material listing. Posts are immutable once created.
// Content, ImageURL and FileLinks are access-gated; the rest is always visible.
type Post struct {
	ID          string     `json:"id" firestore:"-"`
	Title       string     `json:"title" firestore:"title"`
	Price       float64    `json:"price" firestore:"price"`
	Content     string     `json:"content,omitempty" firestore:"content"`
	ImageURL    string     `json:"image_url,omitempty" firestore:"imageUrl"`
	FileLinks   []FileLink `json:"file_links,omitempty" firestore:"fileLinks"`
	CreatedBy   string     `json:"created_by" firestore:"createdBy"`
	CreatedByID string     `json:"created_by_id" firestore:"createdById"`
	CreatedAt   time.Time  `json:"created_at" firestore:"createdAt"`
}

// ListedPost is a Post as seen by a particular user: gated fields are cleared
// whenever Locked is true, so a locked post can never leak them downstream.
type ListedPost struct {
	Post
	Locked bool `json:"locked"`
}

// UnlockGrant records a user's paid access to a post's gated content.
// Grants are insert-only; there is no revoke.
type UnlockGrant struct {
	ID         string    `json:"id" firestore:"-"`
	PostID     string    `json:"post_id" firestore:"postId"`
	UserID     string    `json:"user_id" firestore:"userId"`
	UnlockedBy string    `json:"unlocked_by" firestore:"unlockedBy"`
	UnlockedAt time.Time `json:"unlocked_at" firestore:"unlockedAt"`
}

// NewPost contains information needed to create a Post.
type NewPost struct {
	Title     string     `json:"title" validate:"required"`
	Price     float64    `json:"price" validate:"gte=0"`
	Content   string     `json:"content"`
	ImageURL  string     `json:"image_url" validate:"omitempty,url"`
	FileLinks []FileLink `json:"file_links" validate:"dive"`
}

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	np.ImageURL = core.CleanString(np.ImageURL)
	return validate.Struct(np)
}

// BecomeAdmin is an admin self-promotion request gated by the shared passphrase.
type BecomeAdmin struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Passphrase string `json:"passphrase" validate:"required"`
}

func (ba *BecomeAdmin) Validate(validate *validator.Validate) error {
	ba.Name = core.CleanString(ba.Name)
	ba.Email = core.CleanString(ba.Email, true /* lower */)
	return validate.Struct(ba)
}

// UpdateStatus sets an admin's availability.
type UpdateStatus struct {
	Status string `json:"status" validate:"required,availability"`
}

func (us *UpdateStatus) Validate(validate *validator.Validate) error {
	us.Status = core.CleanString(us.Status, true /* lower */)
	return validate.Struct(us)
}

var (
	availabilityTag  = "availability"
	availabilityText = "status must be either 'open' or 'away'"
)

// InitValidators registers access-specific validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(availabilityTag, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == StatusOpen || s == StatusAway
	})
	core.RegisterCustomTranslation(validate, translator, availabilityTag, availabilityText)
}
