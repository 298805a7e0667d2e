package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/registry"
)

// MinDonation is the smallest accepted donation amount.
const MinDonation = 1000

func donateContent(form domain.FormData, set domain.FieldSetter) domain.View {
	return domain.View{
		Body: fmt.Sprintf("Donate part of your balance. The minimum amount is %d.", MinDonation),
		Fields: []domain.Field{
			domain.Bind(domain.Field{Name: "fund", Label: "Amount", Kind: domain.FieldNumber, Placeholder: "1000"}, form, set),
			domain.Bind(domain.Field{Name: "comment", Label: "Comment", Kind: domain.FieldTextArea}, form, set),
		},
	}
}

// Donate sends part of the user's balance and mirrors the new balance locally.
type Donate struct {
	deps Deps
}

func (h *Donate) parse(inv registry.Invocation) (domain.DonateRequest, error) {
	fund, ok := number(inv.Form, "fund")
	if !ok || fund < MinDonation {
		return domain.DonateRequest{}, domain.Invalid("fund", "Amount is invalid")
	}
	return domain.DonateRequest{
		Fund:      fund,
		Anonymous: false,
		Comment:   strings.TrimSpace(text(inv.Form, "comment")),
	}, nil
}

// Validate implements registry.Handler.
func (h *Donate) Validate(inv registry.Invocation) error {
	_, err := h.parse(inv)
	return err
}

// Run implements registry.Handler.
func (h *Donate) Run(ctx context.Context, inv registry.Invocation) error {
	req, err := h.parse(inv)
	if err != nil {
		return err
	}

	res, err := h.deps.Services.Donations.Donate(ctx, req)
	if err != nil {
		return fmt.Errorf("donate: %w", err)
	}
	if res.Balance == 0 {
		return &domain.UserFacingError{Err: domain.ErrBalanceMissing, Message: "Failed to update balance"}
	}

	balance := res.Balance
	if _, err := inv.Commit(func() error {
		return h.deps.Store.PatchCurrentUser(domain.UserPatch{Balance: &balance})
	}); err != nil {
		return &domain.UserFacingError{Err: err, Message: "Failed to update balance"}
	}
	return nil
}
