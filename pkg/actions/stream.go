package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/registry"
)

func createStreamContent(form domain.FormData, set domain.FieldSetter) domain.View {
	return domain.View{
		Body: "Give the new stream a name. It will be used to track the sales it brings in.",
		Fields: []domain.Field{
			domain.Bind(domain.Field{
				Name:        "name",
				Label:       "Stream name",
				Kind:        domain.FieldText,
				Placeholder: "Summer promo",
			}, form, set),
		},
	}
}

func deleteStreamContent(domain.FormData, domain.FieldSetter) domain.View {
	return domain.View{
		Body: "Do you really want to delete this stream? Its statistics will be lost.",
	}
}

// productID reads the product the modal was opened for.
func productID(inv registry.Invocation) string {
	return inv.ContextString("product.id", "product._id", "product_id", "productId")
}

// CreateStream creates a sales stream for a product.
type CreateStream struct {
	deps Deps
}

type createStreamForm struct {
	name      string
	productID string
}

func (h *CreateStream) parse(inv registry.Invocation) (createStreamForm, error) {
	f := createStreamForm{
		name:      strings.TrimSpace(text(inv.Form, "name")),
		productID: productID(inv),
	}
	if tooShort(f.name, minTextLength) {
		return f, domain.Invalid("name", "Stream name is invalid")
	}
	if f.productID == "" {
		return f, domain.Missing("product.id", "Product id is invalid")
	}
	return f, nil
}

// Validate implements registry.Handler.
func (h *CreateStream) Validate(inv registry.Invocation) error {
	_, err := h.parse(inv)
	return err
}

// Run implements registry.Handler.
func (h *CreateStream) Run(ctx context.Context, inv registry.Invocation) error {
	f, err := h.parse(inv)
	if err != nil {
		return err
	}

	created, err := h.deps.Services.Streams.CreateStream(ctx, f.productID, domain.CreateStreamRequest{Name: f.name})
	if err != nil {
		return fmt.Errorf("create stream: %w", err)
	}

	stream := domain.Stream{
		ID:        h.deps.NewID(),
		RemoteID:  created.ID,
		Name:      created.Name,
		ProductID: created.ProductID,
		Product:   created.Product,
		IsNew:     true,
		CreatedAt: created.CreatedAt,
	}
	if stream.Name == "" {
		stream.Name = f.name
	}
	if stream.ProductID == "" {
		stream.ProductID = f.productID
	}
	if stream.CreatedAt.IsZero() {
		stream.CreatedAt = h.deps.Now()
	}

	applied, err := inv.Commit(func() error {
		return h.deps.Store.Insert(stream)
	})
	if err != nil {
		return fmt.Errorf("cache new stream: %w", err)
	}
	h.deps.Logger.Debug("Stream created", "stream_id", stream.ID, "remote_id", stream.RemoteID, "applied", applied)
	return nil
}

// DeleteStream deletes one of the user's streams.
type DeleteStream struct {
	deps Deps
}

// streamIDs returns the cache id and the id the server knows the stream by.
func streamIDs(inv registry.Invocation) (local, remote string) {
	local = inv.ContextString("stream.id", "stream._id", "stream_id", "id")
	remote = inv.ContextString("stream.remote_id", "remote_id")
	if remote == "" {
		remote = local
	}
	return local, remote
}

// Validate implements registry.Handler.
func (h *DeleteStream) Validate(inv registry.Invocation) error {
	if local, _ := streamIDs(inv); local == "" {
		return domain.Missing("stream.id", "Stream id is invalid")
	}
	return nil
}

// Run implements registry.Handler.
func (h *DeleteStream) Run(ctx context.Context, inv registry.Invocation) error {
	if err := h.Validate(inv); err != nil {
		return err
	}
	local, remote := streamIDs(inv)

	res, err := h.deps.Services.Streams.DeleteStream(ctx, remote)
	if err != nil {
		return fmt.Errorf("delete stream %s: %w", remote, err)
	}
	if strings.TrimSpace(res.Message) == "" {
		return fmt.Errorf("delete stream %s: %w", remote, domain.ErrNotConfirmed)
	}

	var removed bool
	_, _ = inv.Commit(func() error {
		removed = h.deps.Store.RemoveByID(local)
		return nil
	})
	if !removed {
		h.deps.Logger.Debug("Deleted stream was not cached", "stream_id", local)
	}
	return nil
}
