package actions

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/storefront/internal/logging"
	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/registry"
	"github.com/google/uuid"
)

// Tracking messages of the built-in actions.
var (
	CreateStreamMessages = domain.Messages{
		Pending: "Creating stream...",
		Success: "Stream created!",
		Error:   "Failed to create stream!",
	}
	DeleteStreamMessages = domain.Messages{
		Pending: "Deleting stream...",
		Success: "Stream deleted!",
		Error:   "Failed to delete stream!",
	}
	CreateCommentMessages = domain.Messages{
		Pending: "Posting review...",
		Success: "Review posted!",
		Error:   "Failed to post review!",
	}
	DonateMessages = domain.Messages{
		Pending: "Sending donation...",
		Success: "Donation sent!",
		Error:   "Failed to send donation!",
	}
	CallOrderMessages = domain.Messages{
		Pending: "Placing order...",
		Success: "Order placed!",
		Error:   "Failed to place order!",
	}
	// The server's own message replaces Error when it sent one.
	PaymentMessages = domain.Messages{
		Pending: "Sending payment request...",
		Success: "Payment request sent!",
		Error:   "Something went wrong",
	}
)

// Deps are the collaborators shared by the built-in handlers.
type Deps struct {
	Services ports.Services
	Store    ports.EntityStore
	Fallback ports.FallbackStore
	Contact  ContactInfo
	Logger   *slog.Logger

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.NewID == nil {
		d.NewID = uuid.NewString
	}
	return d
}

// Descriptors returns the built-in action table.
// A handler whose service is missing from deps is left out, turning the action
// into a content-only one rather than failing at submit time.
func Descriptors(deps Deps) []registry.Descriptor {
	deps = deps.withDefaults()

	descs := []registry.Descriptor{
		{ID: domain.ActionContact, Content: contactContent(deps.Contact)},
		{ID: domain.ActionCreateStream, Content: registry.ContentFunc(createStreamContent), Messages: CreateStreamMessages},
		{ID: domain.ActionDeleteStream, Content: registry.ContentFunc(deleteStreamContent), Messages: DeleteStreamMessages},
		{ID: domain.ActionCreateComment, Content: registry.ContentFunc(createCommentContent), Messages: CreateCommentMessages},
		{ID: domain.ActionDonate, Content: registry.ContentFunc(donateContent), Messages: DonateMessages},
		{ID: domain.ActionCallOrder, Content: registry.ContentFunc(callOrderContent), Messages: CallOrderMessages},
		{ID: domain.ActionPayment, Content: registry.ContentFunc(paymentContent), Messages: PaymentMessages},
	}

	svc := deps.Services
	for i := range descs {
		switch descs[i].ID {
		case domain.ActionCreateStream:
			if svc.Streams != nil {
				descs[i].Handler = &CreateStream{deps: deps}
			}
		case domain.ActionDeleteStream:
			if svc.Streams != nil {
				descs[i].Handler = &DeleteStream{deps: deps}
			}
		case domain.ActionCreateComment:
			if svc.Comments != nil {
				descs[i].Handler = &CreateComment{deps: deps}
			}
		case domain.ActionDonate:
			if svc.Donations != nil {
				descs[i].Handler = &Donate{deps: deps}
			}
		case domain.ActionCallOrder:
			if svc.Orders != nil {
				descs[i].Handler = &CallOrder{deps: deps}
			}
		case domain.ActionPayment:
			if svc.Payments != nil {
				descs[i].Handler = &Payment{deps: deps}
			}
		}
	}
	return descs
}

// NewRegistry builds the registry of built-in actions.
func NewRegistry(deps Deps) (*registry.Registry, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("build action registry: entity store is required")
	}
	return registry.NewRegistry(Descriptors(deps)...)
}
