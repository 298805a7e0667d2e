/*
Package observability provides tools for monitoring the modal action engine.

It turns engine lifecycle hooks into Prometheus metrics and structured audit logs.
Both are plain domain.LifecycleHooks values and can be merged and passed to the engine.
*/
package observability
