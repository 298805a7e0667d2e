/*
Package ports defines the driven ports (interfaces) of the modal action engine.

These interfaces decouple the engine from the concrete cache, notification channel,
durable fallback storage and HTTP backend, so each can be swapped in tests or by the host.

# Key Interfaces

  - EntityStore: Insert, RemoveByID and PatchCurrentUser on the client-side entity cache.
  - Notifier: Direct and promise-tracked notices.
  - FallbackStore: Append-only durable queue of failed attempts.
  - StreamService, CommentService, DonationService, OrderService, ProfileService: Backend collaborators.
  - ModalEngine: The opener-side API used by adapters.
*/
package ports
