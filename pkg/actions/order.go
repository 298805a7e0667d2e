package actions

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/registry"
)

const (
	// PhoneLength is the length of a fully masked phone number: "+998 (90) 123-45-67".
	PhoneLength = 19
	phonePrefix = "998"
)

// Regions are the delivery regions, indexed by address code.
var Regions = []string{
	"Toshkent shahri",
	"Toshkent viloyati",
	"Andijon viloyati",
	"Buxoro viloyati",
	"Farg'ona viloyati",
	"Jizzax viloyati",
	"Xorazm viloyati",
	"Namangan viloyati",
	"Navoiy viloyati",
	"Qashqadaryo viloyati",
	"Qoraqalpog'iston Respublikasi",
	"Samarqand viloyati",
	"Sirdaryo viloyati",
	"Surxondaryo viloyati",
	"Boshqa hudud",
}

func callOrderContent(form domain.FormData, set domain.FieldSetter) domain.View {
	codes := make([]string, len(Regions))
	var body strings.Builder
	body.WriteString("Leave your number and we will call you back to confirm the order.\n\n")
	for i, r := range Regions {
		codes[i] = fmt.Sprint(i)
		fmt.Fprintf(&body, "- `%d` %s\n", i, r)
	}

	// Phone input is masked as it is typed.
	var maskedSet domain.FieldSetter
	if set != nil {
		maskedSet = func(field string, value any) {
			if field == "client_mobile" {
				if s, ok := value.(string); ok {
					value = FormatPhone(s)
				}
			}
			set(field, value)
		}
	}

	return domain.View{
		Body: body.String(),
		Fields: []domain.Field{
			domain.Bind(domain.Field{Name: "client_name", Label: "Name", Kind: domain.FieldText}, form, set),
			domain.Bind(domain.Field{
				Name:        "client_mobile",
				Label:       "Phone number",
				Kind:        domain.FieldPhone,
				Placeholder: "+998 (__) ___-__-__",
			}, form, maskedSet),
			domain.Bind(domain.Field{Name: "client_address", Label: "Region", Kind: domain.FieldChoice, Options: codes}, form, set),
		},
	}
}

// FormatPhone masks the digits of raw as "+998 (XX) XXX-XX-XX".
// Partial input yields a partial mask; the country code is added when missing.
func FormatPhone(raw string) string {
	digits := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	d := strings.TrimPrefix(string(digits), phonePrefix)
	if len(d) > 9 {
		d = d[:9]
	}
	if d == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("+" + phonePrefix + " (")
	for i := 0; i < len(d); i++ {
		switch i {
		case 2:
			b.WriteString(") ")
		case 5, 7:
			b.WriteByte('-')
		}
		b.WriteByte(d[i])
	}
	return b.String()
}

// CallOrder places a phone order for a product. It does not touch the cache.
type CallOrder struct {
	deps Deps
}

func (h *CallOrder) parse(inv registry.Invocation) (string, domain.OrderRequest, error) {
	req := domain.OrderRequest{
		ClientName:   strings.TrimSpace(text(inv.Form, "client_name")),
		ClientMobile: text(inv.Form, "client_mobile"),
	}
	if tooShort(req.ClientName, minTextLength) {
		return "", req, domain.Invalid("client_name", "Name is invalid")
	}
	if utf8.RuneCountInString(req.ClientMobile) != PhoneLength {
		return "", req, domain.Invalid("client_mobile", "Phone number is invalid")
	}
	code, ok := integer(inv.Form, "client_address")
	if !ok || code < 0 || code >= len(Regions) {
		return "", req, domain.Invalid("client_address", "Address code is invalid")
	}
	req.ClientAddress = code

	id := productID(inv)
	if id == "" {
		return "", req, domain.Missing("product.id", "Product id is invalid")
	}
	return id, req, nil
}

// Validate implements registry.Handler.
func (h *CallOrder) Validate(inv registry.Invocation) error {
	_, _, err := h.parse(inv)
	return err
}

// Run implements registry.Handler.
func (h *CallOrder) Run(ctx context.Context, inv registry.Invocation) error {
	productID, req, err := h.parse(inv)
	if err != nil {
		return err
	}
	if err := h.deps.Services.Orders.CreateOrder(ctx, productID, req); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}
