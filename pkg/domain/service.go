package domain

// CreateStreamRequest is the payload sent when creating a stream for a product.
type CreateStreamRequest struct {
	Name string `json:"name"`
}

// DeleteStreamResult is the backend answer to a stream deletion.
// An empty Message means the server did not confirm the removal.
type DeleteStreamResult struct {
	Message string `json:"message"`
}

// CommentPayload is the review posted for a product.
type CommentPayload struct {
	Commentor string `json:"commentor"`
	Comment   string `json:"comment"`
	Gender    string `json:"gender"`
	Rating    int    `json:"rating"`
}

// DonateRequest is the payload sent when donating part of the balance.
type DonateRequest struct {
	Fund      float64 `json:"fund"`
	Anonymous bool    `json:"anonim"`
	Comment   string  `json:"comment,omitempty"`
}

// DonateResult carries the balance after a donation. Zero means "not reported".
type DonateResult struct {
	Balance float64 `json:"your_balance"`
}

// PaymentRequest asks the backend to pay an amount out to a card.
type PaymentRequest struct {
	CardNumber string  `json:"card_number"`
	CardOwner  string  `json:"card_owner"`
	Amount     float64 `json:"payment"`
	Comment    string  `json:"comment,omitempty"`
}

// OrderRequest is a phone order placed for a product.
type OrderRequest struct {
	ClientName    string `json:"client_name"`
	ClientMobile  string `json:"client_mobile"`
	ClientAddress int    `json:"client_address"`
}
