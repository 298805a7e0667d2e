/*
Package storefront is a modal action engine for a storefront client. A single modal
hosts many small forms (create or delete a stream, post a review, donate, order by
phone, show the support contact), each registered as an action.

# Concept

Every action pairs a content strategy, which renders the editable form and routes
edits back into it, with an optional handler, which validates the form and performs
the backend mutation when the primary button is pressed. The modal closes at once;
the backend call runs in the background under a tracked notice that moves from
pending to success or error. On success the handler applies exactly one mutation
to the entity cache (insert a stream, remove a stream, patch the user's balance).

Rejected reviews are kept in a fallback store (memory, SQLite or Redis) and can be
replayed later with RetryComment.

# Usage

	client, err := storefront.New(
		storefront.WithServices(api.Services()),
		storefront.WithLogger(logger),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := client.Bootstrap(ctx); err != nil {
		log.Printf("bootstrap: %v", err)
	}

	_, _ = client.Open(ctx, domain.OpenRequest{
		ActionID: domain.ActionCreateStream,
		Title:    "New stream",
		Buttons:  domain.Buttons{Primary: &domain.Button{Label: "Create"}},
		Context:  map[string]any{"product": map[string]any{"id": "p-1"}},
	})
	_ = client.Edit("name", "Evening sale")

	ticket, err := client.Submit(ctx)
	if err == nil && ticket != nil {
		_ = ticket.Wait(ctx)
	}

# Adapters

The same client is exposed over HTTP (pkg/adapters/http), MCP (pkg/adapters/mcp) and
an interactive terminal Runner. See cmd/storefront for the wiring.
*/
package storefront
