package ports

import (
	"context"

	"github.com/aretw0/storefront/pkg/domain"
)

// The collaborator services below are opaque request functions. Any returned error
// is treated uniformly as a failed mutation, whatever its cause.

// StreamService manages the user's sales streams.
type StreamService interface {
	ListStreams(ctx context.Context) ([]domain.Stream, error)
	CreateStream(ctx context.Context, productID string, req domain.CreateStreamRequest) (domain.Stream, error)
	DeleteStream(ctx context.Context, streamID string) (domain.DeleteStreamResult, error)
}

// CommentService posts product reviews.
type CommentService interface {
	CreateComment(ctx context.Context, productID string, payload domain.CommentPayload) error
}

// DonationService donates part of the user's balance.
type DonationService interface {
	Donate(ctx context.Context, req domain.DonateRequest) (domain.DonateResult, error)
}

// OrderService places phone orders for a product.
type OrderService interface {
	CreateOrder(ctx context.Context, productID string, req domain.OrderRequest) error
}

// PaymentService sends payment requests.
type PaymentService interface {
	CreatePayment(ctx context.Context, req domain.PaymentRequest) error
}

// ProfileService loads the signed-in user.
type ProfileService interface {
	Profile(ctx context.Context) (domain.User, error)
}

// Services bundles every collaborator the built-in actions need.
type Services struct {
	Streams   StreamService
	Comments  CommentService
	Donations DonationService
	Orders    OrderService
	Payments  PaymentService
	Profile   ProfileService
}
