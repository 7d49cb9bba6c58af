package mailer

import (
	"context"
	"fmt"

	"github.com/GringoXY/4-gamers-mailing/internal/docsapi"
	"github.com/GringoXY/4-gamers-mailing/internal/events"
	"github.com/GringoXY/4-gamers-mailing/internal/models"
)

// Builder turns a durable inbox record into a composed email: it decodes the
// typed domain event, renders the variant's subject and body, and fetches the
// generated document when the variant has one. Every failure it returns is
// scoped to the single record being built.
type Builder struct {
	renderer *Renderer
	docs     docsapi.Generator
}

func NewBuilder(renderer *Renderer, docs docsapi.Generator) *Builder {
	return &Builder{
		renderer: renderer,
		docs:     docs,
	}
}

// Build composes the notification for one inbox record.
func (b *Builder) Build(ctx context.Context, msg models.InboxMessage) (Email, error) {
	event, err := events.Decode(msg.EventType, []byte(msg.Payload))
	if err != nil {
		return Email{}, fmt.Errorf("failed to decode inbox message %s: %w", msg.ID, err)
	}

	email, err := b.compose(event)
	if err != nil {
		return Email{}, err
	}

	filename, content, err := b.docs.Generate(ctx, event)
	if err != nil {
		return Email{}, fmt.Errorf("failed to generate document for inbox message %s: %w", msg.ID, err)
	}

	// An empty document means no attachment, not a failure.
	if filename != "" && len(content) > 0 {
		email.Attachment = &Attachment{
			Filename: filename,
			Content:  content,
		}
	}

	return email, nil
}

// compose renders the variant-specific recipient, subject and body. The
// switch is exhaustive over the closed event set; the default arm guards
// against a variant added without a template.
func (b *Builder) compose(event events.Event) (Email, error) {
	switch e := event.(type) {
	case events.OrderCreatedEvent:
		body, err := b.renderer.Render("order_created.gohtml", e)
		if err != nil {
			return Email{}, err
		}
		return Email{
			To:       e.ShipToEmail,
			Subject:  fmt.Sprintf("New order received: %s", e.ID),
			HTMLBody: body,
		}, nil
	case events.OrderStateUpdatedEvent:
		body, err := b.renderer.Render("order_state_updated.gohtml", e)
		if err != nil {
			return Email{}, err
		}
		return Email{
			To:       e.ShipToEmail,
			Subject:  fmt.Sprintf("Order state updated: %s", e.ID),
			HTMLBody: body,
		}, nil
	default:
		return Email{}, fmt.Errorf("no email template defined for event type %s", event.EventType())
	}
}
