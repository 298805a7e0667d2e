package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/ports"
	"github.com/aretw0/storefront/pkg/registry"
)

// Accepted gender values of a review.
var genders = []string{"male", "female"}

func createCommentContent(form domain.FormData, set domain.FieldSetter) domain.View {
	return domain.View{
		Body: "Share your experience with this product.",
		Fields: []domain.Field{
			domain.Bind(domain.Field{Name: "commentor", Label: "Your name", Kind: domain.FieldText}, form, set),
			domain.Bind(domain.Field{Name: "comment", Label: "Review", Kind: domain.FieldTextArea}, form, set),
			domain.Bind(domain.Field{Name: "gender", Label: "Gender", Kind: domain.FieldChoice, Options: genders}, form, set),
			domain.Bind(domain.Field{
				Name:    "rating",
				Label:   "Rating",
				Kind:    domain.FieldChoice,
				Options: []string{"1", "2", "3", "4", "5"},
			}, form, set),
		},
	}
}

// CreateComment posts a product review. When the backend rejects it, the exact
// payload is kept in the fallback store for a manual retry.
type CreateComment struct {
	deps Deps
}

func (h *CreateComment) parse(inv registry.Invocation) (string, domain.CommentPayload, error) {
	p := domain.CommentPayload{
		Commentor: strings.TrimSpace(text(inv.Form, "commentor")),
		Comment:   strings.TrimSpace(text(inv.Form, "comment")),
		Gender:    text(inv.Form, "gender"),
	}
	if tooShort(p.Commentor, minTextLength) {
		return "", p, domain.Invalid("commentor", "Name is invalid")
	}
	if tooShort(p.Comment, minTextLength) {
		return "", p, domain.Invalid("comment", "Comment is invalid")
	}
	if p.Gender != "male" && p.Gender != "female" {
		return "", p, domain.Invalid("gender", "Gender is invalid")
	}
	rating, ok := integer(inv.Form, "rating")
	if !ok || rating <= 0 || rating > 5 {
		return "", p, domain.Invalid("rating", "Rating is invalid")
	}
	p.Rating = rating

	id := productID(inv)
	if id == "" {
		return "", p, domain.Missing("product.id", "Product id is invalid")
	}
	return id, p, nil
}

// Validate implements registry.Handler.
func (h *CreateComment) Validate(inv registry.Invocation) error {
	_, _, err := h.parse(inv)
	return err
}

// Run implements registry.Handler.
func (h *CreateComment) Run(ctx context.Context, inv registry.Invocation) error {
	productID, payload, err := h.parse(inv)
	if err != nil {
		return err
	}

	err = h.deps.Services.Comments.CreateComment(ctx, productID, payload)
	if err == nil {
		return nil
	}

	if h.deps.Fallback == nil {
		h.deps.Logger.Warn("Review rejected and no fallback store is configured", "product_id", productID, "err", err)
		return fmt.Errorf("create comment: %w", err)
	}

	// The request context may already be canceled; the payload must still land.
	saveCtx := context.WithoutCancel(ctx)
	if serr := SaveComment(saveCtx, h.deps, productID, payload, err); serr != nil {
		h.deps.Logger.Error("Failed to keep rejected review", "product_id", productID, "err", serr)
		return errors.Join(fmt.Errorf("create comment: %w", err), serr)
	}
	return fmt.Errorf("create comment: %w", err)
}

// SaveComment appends a rejected review to the fallback store.
func SaveComment(ctx context.Context, deps Deps, productID string, payload domain.CommentPayload, cause error) error {
	deps = deps.withDefaults()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode review: %w", err)
	}
	attempt := domain.Attempt{
		ID:        deps.NewID(),
		Kind:      domain.AttemptComment,
		TargetID:  productID,
		Payload:   body,
		CreatedAt: deps.Now(),
	}
	if cause != nil {
		attempt.Reason = cause.Error()
	}
	if err := deps.Fallback.Append(ctx, attempt); err != nil {
		return fmt.Errorf("append review attempt: %w", err)
	}
	deps.Logger.Info("Rejected review kept for retry", "attempt_id", attempt.ID, "product_id", productID)
	return nil
}

// ReplayComment posts a stored review again. The attempt is claimed by removing
// it from the fallback store first, so only one replay can post it; when the
// backend rejects it again the attempt is put back.
func ReplayComment(ctx context.Context, comments ports.CommentService, store ports.FallbackStore, attempt domain.Attempt) error {
	if attempt.Kind != domain.AttemptComment {
		return fmt.Errorf("replay attempt %s: unexpected kind %q", attempt.ID, attempt.Kind)
	}

	var payload domain.CommentPayload
	if err := json.Unmarshal(attempt.Payload, &payload); err != nil {
		return fmt.Errorf("decode attempt %s: %w", attempt.ID, err)
	}
	if err := store.Delete(ctx, attempt.ID); err != nil {
		return fmt.Errorf("claim attempt %s: %w", attempt.ID, err)
	}
	if err := comments.CreateComment(ctx, attempt.TargetID, payload); err != nil {
		if rerr := store.Append(context.WithoutCancel(ctx), attempt); rerr != nil {
			return errors.Join(fmt.Errorf("replay attempt %s: %w", attempt.ID, err), fmt.Errorf("restore attempt %s: %w", attempt.ID, rerr))
		}
		return fmt.Errorf("replay attempt %s: %w", attempt.ID, err)
	}
	return nil
}
