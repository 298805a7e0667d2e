package actions

import (
	"fmt"
	"strings"

	"github.com/aretw0/storefront/pkg/domain"
	"github.com/aretw0/storefront/pkg/registry"
)

// ContactInfo is the support contact shown by the contact action.
type ContactInfo struct {
	Phone    string `yaml:"phone"`
	Telegram string `yaml:"telegram"`
	Email    string `yaml:"email"`
}

// DefaultContact is used when no contact is configured.
var DefaultContact = ContactInfo{
	Phone:    "+998 (71) 200-00-00",
	Telegram: "@storefront_support",
}

func contactContent(info ContactInfo) registry.ContentStrategy {
	if info == (ContactInfo{}) {
		info = DefaultContact
	}

	var b strings.Builder
	b.WriteString("## Contact us\n\n")
	if info.Phone != "" {
		fmt.Fprintf(&b, "- Phone: %s\n", info.Phone)
	}
	if info.Telegram != "" {
		fmt.Fprintf(&b, "- Telegram: %s\n", info.Telegram)
	}
	if info.Email != "" {
		fmt.Fprintf(&b, "- Email: %s\n", info.Email)
	}
	body := b.String()

	return registry.ContentFunc(func(domain.FormData, domain.FieldSetter) domain.View {
		return domain.View{Body: body}
	})
}
