/*
Package domain contains the core models of the storefront modal action engine.

It defines what the engine talks about: action identifiers, form data, the views
produced by content strategies, the entities mirrored in the client-side cache and
the notices shown to the user. The package is kept free of I/O and persistence so
that every adapter (HTTP, MCP, terminal) shares the same vocabulary.

# Key Entities

  - ActionID: The discriminator selecting which content/handler pair is active.
  - Session: The ephemeral snapshot of an open modal (title, buttons, context, form).
  - View: The editable form surface rendered for the active action.
  - Stream, User: Entities held by the entity cache store.
  - Notice: A transient message shown to the user (pending, success, error, info).
  - Attempt: A failed mutation payload kept for manual recovery.
*/
package domain
