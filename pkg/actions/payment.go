package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/registry"
)

const (
	// MaxPayment is the largest amount a single payment request may ask for.
	MaxPayment = 5_000_000
	// CardLength is the length of a fully formatted card number: "8600 1234 5678 9012".
	CardLength = 19
)

func paymentContent(form domain.FormData, set domain.FieldSetter) domain.View {
	var cardSet domain.FieldSetter
	if set != nil {
		cardSet = func(field string, value any) {
			if s, ok := value.(string); ok {
				value = FormatCard(s)
			}
			set(field, value)
		}
	}

	return domain.View{
		Body: "Send a payment request to your card.",
		Fields: []domain.Field{
			domain.Bind(domain.Field{
				Name:        "card_number",
				Label:       "Card number",
				Kind:        domain.FieldText,
				Placeholder: "0000 0000 0000 0000",
			}, form, cardSet),
			domain.Bind(domain.Field{Name: "card_owner", Label: "Card owner", Kind: domain.FieldText}, form, set),
			domain.Bind(domain.Field{
				Name:        "payment",
				Label:       "Amount",
				Kind:        domain.FieldNumber,
				Placeholder: fmt.Sprintf("Max %d", MaxPayment),
			}, form, set),
			domain.Bind(domain.Field{Name: "comment", Label: "Comment", Kind: domain.FieldTextArea, Placeholder: "Optional"}, form, set),
		},
	}
}

// FormatCard groups the first 16 digits of raw in blocks of four.
func FormatCard(raw string) string {
	var b strings.Builder
	n := 0
	for i := 0; i < len(raw) && n < 16; i++ {
		if raw[i] < '0' || raw[i] > '9' {
			continue
		}
		if n > 0 && n%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteByte(raw[i])
		n++
	}
	return b.String()
}

// Payment sends a payment request. It does not touch the cache.
type Payment struct {
	deps Deps
}

func (h *Payment) parse(inv registry.Invocation) (domain.PaymentRequest, error) {
	req := domain.PaymentRequest{
		CardNumber: FormatCard(text(inv.Form, "card_number")),
		CardOwner:  strings.TrimSpace(text(inv.Form, "card_owner")),
		Comment:    strings.TrimSpace(text(inv.Form, "comment")),
	}
	if len(req.CardNumber) != CardLength {
		return req, domain.Invalid("card_number", "Card number is invalid")
	}
	if tooShort(req.CardOwner, minTextLength) {
		return req, domain.Invalid("card_owner", "Card owner is invalid")
	}
	amount, ok := number(inv.Form, "payment")
	if !ok || amount <= 0 || amount > MaxPayment {
		return req, domain.Invalid("payment", "Amount is invalid")
	}
	req.Amount = amount
	return req, nil
}

// Validate implements registry.Handler.
func (h *Payment) Validate(inv registry.Invocation) error {
	_, err := h.parse(inv)
	return err
}

// Run implements registry.Handler.
func (h *Payment) Run(ctx context.Context, inv registry.Invocation) error {
	req, err := h.parse(inv)
	if err != nil {
		return err
	}
	if err := h.deps.Services.Payments.CreatePayment(ctx, req); err != nil {
		if msg := domain.ServerMessage(err); msg != "" {
			return &domain.UserFacingError{Err: err, Message: msg}
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}
