package chat

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/CooperDXSF9721/Homework-Helpers/core"
	"github.com/CooperDXSF9721/Homework-Helpers/core/access"
	"github.com/CooperDXSF9721/Homework-Helpers/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("chat not found")
	ErrAdminAway    = errors.New("this admin is currently away")
	ErrEmptyMessage = errors.New("message text must not be empty")
)

const chatRequestedTemplate = "chat-requested"

type (
	Repository interface {
		CreateChat(ctx context.Context, c Chat) (Chat, error)
		GetChat(ctx context.Context, id string) (Chat, error)
		// QueryActiveChats returns every chat still in StatusActive; admins have
		// global visibility.
		QueryActiveChats(ctx context.Context) ([]Chat, error)
		QueryActiveChatsByClient(ctx context.Context, clientID string) ([]Chat, error)
		CloseChat(ctx context.Context, id string) error

		// AppendMessage writes the message and updates the chat's denormalized
		// last-message preview in a single atomic operation.
		AppendMessage(ctx context.Context, chatID string, msg Message) (Message, error)
		// SubscribeMessages opens a live snapshot feed of the chat's messages.
		SubscribeMessages(ctx context.Context, chatID string) (*Subscription, error)
	}

	// AdminDirectory resolves chat-request targets and notification recipients.
	AdminDirectory interface {
		GetAdmin(ctx context.Context, userID string) (access.Admin, error)
		ListAdmins(ctx context.Context) ([]access.Admin, error)
	}

	Service interface {
		Request(ctx context.Context, client user.User, adminID string) (Chat, error)
		List(ctx context.Context, userID string, asAdmin bool) ([]Chat, error)
		Get(ctx context.Context, chatID string) (Chat, error)
		Open(ctx context.Context, chatID string) (*Subscription, error)
		Send(ctx context.Context, chatID, senderID, senderName, text string) error
		Close(ctx context.Context, chatID string) error
	}

	service struct {
		repo    Repository
		admins  AdminDirectory
		mailSvc core.EmailService
		logger  core.Logger
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, admins AdminDirectory, mailSvc core.EmailService, logger core.Logger, conf *core.Config) Service {
	return &service{
		repo:    repo,
		admins:  admins,
		mailSvc: mailSvc,
		logger:  logger,
		conf:    conf,
	}
}

// Request creates an active chat with the given admin. Requests to an away
// admin are rejected without creating anything. On success every admin is
// notified by email, not just the requested one, so anyone can pick it up;
// notification failures never fail the chat creation.
func (svc *service) Request(ctx context.Context, client user.User, adminID string) (Chat, error) {
	adm, err := svc.admins.GetAdmin(ctx, adminID)
	if err != nil {
		return Chat{}, err
	}
	if adm.IsAway() {
		return Chat{}, ErrAdminAway
	}

	c, err := svc.repo.CreateChat(ctx, Chat{
		ClientID:   client.ID,
		ClientName: client.Name,
		AdminID:    adm.ID,
		AdminName:  adm.Name,
		AdminEmail: adm.Email,
		Status:     StatusActive,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return Chat{}, pkgerrors.Wrap(err, "creating chat")
	}

	svc.notifyAdmins(ctx, c)
	return c, nil
}

// notifyAdmins fans a chat-request notification out to the full roster,
// marking the admin the client actually asked for. Fire-and-forget.
func (svc *service) notifyAdmins(ctx context.Context, c Chat) {
	admins, err := svc.admins.ListAdmins(ctx)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("listing admins for chat notification: %v", err), err)
		return
	}

	msgs := make([]*core.EmailMessage, 0, len(admins))
	for _, adm := range admins {
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{{Name: adm.Name, Address: adm.Email}},
			Subject:      fmt.Sprintf("%s requested a chat", c.ClientName),
			TemplateName: chatRequestedTemplate,
			TemplateData: struct {
				AdminName     string
				ClientName    string
				AssignedAdmin string
				IsAssigned    bool
				ChatLink      string
			}{
				AdminName:     adm.Name,
				ClientName:    c.ClientName,
				AssignedAdmin: c.AdminName,
				IsAssigned:    adm.ID == c.AdminID,
				ChatLink:      fmt.Sprintf("%s/?chat=%s", svc.conf.FrontendBaseURL, c.ID),
			},
		})
	}
	svc.mailSvc.SendMessages(msgs...)
}

func (svc *service) List(ctx context.Context, userID string, asAdmin bool) ([]Chat, error) {
	if asAdmin {
		return svc.repo.QueryActiveChats(ctx)
	}
	return svc.repo.QueryActiveChatsByClient(ctx, userID)
}

func (svc *service) Get(ctx context.Context, chatID string) (Chat, error) {
	return svc.repo.GetChat(ctx, chatID)
}

func (svc *service) Open(ctx context.Context, chatID string) (*Subscription, error) {
	if _, err := svc.repo.GetChat(ctx, chatID); err != nil {
		return nil, err
	}
	return svc.repo.SubscribeMessages(ctx, chatID)
}

// Send appends a message; the chat's last-message preview is updated in the
// same write so the two can never disagree.
func (svc *service) Send(ctx context.Context, chatID, senderID, senderName, text string) error {
	text = core.CleanString(text)
	if text == "" {
		return ErrEmptyMessage
	}

	_, err := svc.repo.AppendMessage(ctx, chatID, Message{
		SenderID:   senderID,
		SenderName: senderName,
		Text:       text,
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return pkgerrors.Wrap(err, "appending message")
	}
	return err
}

// Close transitions the chat to closed, permanently excluding it from List.
func (svc *service) Close(ctx context.Context, chatID string) error {
	return svc.repo.CloseChat(ctx, chatID)
}
