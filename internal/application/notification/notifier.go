// Package notification emails customers when staff act on their records.
package notification

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/frankincense-labs/cx-management/internal/domain/feedback"
	"github.com/frankincense-labs/cx-management/internal/domain/shared/events"
	"github.com/frankincense-labs/cx-management/internal/domain/ticket"
	"github.com/frankincense-labs/cx-management/internal/shared/logger"
	"github.com/frankincense-labs/cx-management/internal/shared/services/markdown"
)

const sendTimeout = 30 * time.Second

// Message is one outgoing email.
type Message struct {
	To        string
	Subject   string
	HTMLBody  string
	PlainBody string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier turns ticket and feedback domain events into customer emails.
type Notifier struct {
	mailer    Mailer
	markdown  markdown.Renderer
	portalURL string
	logger    logger.Interface
}

func NewNotifier(mailer Mailer, md markdown.Renderer, portalURL string, log logger.Interface) *Notifier {
	return &Notifier{
		mailer:    mailer,
		markdown:  md,
		portalURL: strings.TrimRight(portalURL, "/"),
		logger:    log,
	}
}

// Register subscribes the notifier to the events it handles.
func (n *Notifier) Register(d events.EventDispatcher) error {
	handlers := map[string]func(events.DomainEvent) error{
		feedback.EventTypeFeedbackReviewed: n.handleFeedbackReviewed,
		ticket.EventTypeStatusChanged:      n.handleStatusChanged,
		ticket.EventTypeReplyAdded:         n.handleReplyAdded,
	}
	for eventType, fn := range handlers {
		if err := d.Subscribe(eventType, events.NewHandlerFunc(eventType, fn)); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
		}
	}
	return nil
}

// StatusLabel renders a ticket status for people, e.g. "in-progress" becomes
// "In Progress". A Caser keeps state, so each call builds its own.
func StatusLabel(status string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(status, "-", " "))
}

func (n *Notifier) handleFeedbackReviewed(e events.DomainEvent) error {
	ev, ok := e.(feedback.ReviewedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", e)
	}
	if ev.OwnerEmail == "" {
		return nil
	}

	link := n.portalURL + "/customer/my-feedback"
	plain := fmt.Sprintf(
		"Thank you for your feedback.\n\nOur team has reviewed your %d-star feedback. You can see it at %s\n",
		ev.Rating, link,
	)
	body := fmt.Sprintf(
		`<p>Thank you for your feedback.</p><p>Our team has reviewed your %d-star feedback.</p><p><a href="%s">View your feedback</a></p>`,
		ev.Rating, html.EscapeString(link),
	)
	return n.send(Message{
		To:        ev.OwnerEmail,
		Subject:   "Your feedback has been reviewed",
		HTMLBody:  wrap(body),
		PlainBody: plain,
	}, ev.GetAggregateID())
}

func (n *Notifier) handleStatusChanged(e events.DomainEvent) error {
	ev, ok := e.(ticket.StatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", e)
	}
	if ev.OwnerEmail == "" {
		return nil
	}

	label := StatusLabel(ev.NewStatus.String())
	link := n.ticketLink(ev.GetAggregateID())
	plain := fmt.Sprintf(
		"Your ticket %s (%s) is now %s.\n\nView it at %s\n",
		ev.Number, ev.Subject, label, link,
	)
	body := fmt.Sprintf(
		`<p>Your ticket <strong>%s</strong> (%s) is now <strong>%s</strong>.</p><p><a href="%s">View ticket</a></p>`,
		html.EscapeString(ev.Number), html.EscapeString(ev.Subject), html.EscapeString(label), html.EscapeString(link),
	)
	return n.send(Message{
		To:        ev.OwnerEmail,
		Subject:   fmt.Sprintf("[%s] Status changed to %s", ev.Number, label),
		HTMLBody:  wrap(body),
		PlainBody: plain,
	}, ev.GetAggregateID())
}

func (n *Notifier) handleReplyAdded(e events.DomainEvent) error {
	ev, ok := e.(ticket.ReplyAddedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", e)
	}
	if ev.OwnerEmail == "" {
		return nil
	}

	rendered, err := n.markdown.ToSafeHTML(ev.Message)
	if err != nil {
		n.logger.Warnw("failed to render reply markdown, sending escaped text",
			"ticket_id", ev.GetAggregateID(),
			"error", err,
		)
		rendered = "<p>" + html.EscapeString(ev.Message) + "</p>"
	}

	link := n.ticketLink(ev.GetAggregateID())
	plain := fmt.Sprintf(
		"Support replied to your ticket %s (%s):\n\n%s\n\nView the conversation at %s\n",
		ev.Number, ev.Subject, ev.Message, link,
	)
	body := fmt.Sprintf(
		`<p>Support replied to your ticket <strong>%s</strong> (%s):</p><blockquote>%s</blockquote><p><a href="%s">View conversation</a></p>`,
		html.EscapeString(ev.Number), html.EscapeString(ev.Subject), rendered, html.EscapeString(link),
	)
	return n.send(Message{
		To:        ev.OwnerEmail,
		Subject:   fmt.Sprintf("[%s] New reply from support", ev.Number),
		HTMLBody:  wrap(body),
		PlainBody: plain,
	}, ev.GetAggregateID())
}

func (n *Notifier) ticketLink(ticketID string) string {
	return n.portalURL + "/customer/ticket/" + ticketID
}

func (n *Notifier) send(msg Message, aggregateID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if err := n.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send notification for %s: %w", aggregateID, err)
	}
	n.logger.Infow("notification sent",
		"aggregate_id", aggregateID,
		"subject", msg.Subject,
	)
	return nil
}

func wrap(body string) string {
	return "<html><body>" + body + "</body></html>"
}
