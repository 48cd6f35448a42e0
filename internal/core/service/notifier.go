package service

import (
	"context"
	"fmt"

	"github.com/99minutos/account-service/internal/core/domain"
	"github.com/99minutos/account-service/internal/core/ports"
)

// Notifier renders and hands off the transactional emails.
type Notifier struct {
	mailer   ports.Mailer
	renderer ports.EmailRenderer
}

func NewNotifier(mailer ports.Mailer, renderer ports.EmailRenderer) *Notifier {
	return &Notifier{mailer: mailer, renderer: renderer}
}

func (n *Notifier) ResetPassword(ctx context.Context, email, token string) error {
	msg, err := n.renderer.ResetPassword(email, token)
	if err != nil {
		return err
	}
	return n.send(ctx, email, msg)
}

func (n *Notifier) NewAccount(ctx context.Context, a *domain.Account) error {
	msg, err := n.renderer.NewAccount(a.Username)
	if err != nil {
		return err
	}
	return n.send(ctx, a.Email, msg)
}

func (n *Notifier) Test(ctx context.Context, to string) error {
	msg, err := n.renderer.Test()
	if err != nil {
		return err
	}
	return n.send(ctx, to, msg)
}

func (n *Notifier) send(ctx context.Context, to string, msg ports.Email) error {
	if err := n.mailer.Send(ctx, to, msg.Subject, msg.HTMLBody); err != nil {
		return fmt.Errorf("send %q: %w", msg.Subject, err)
	}
	return nil
}
