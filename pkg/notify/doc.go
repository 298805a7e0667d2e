/*
Package notify implements the notification channel of the modal action engine.

It shows transient user feedback and supports a promise-tracking mode: Track shows a
pending notice immediately and, once the tracked operation returns, replaces that same
notice (same ID) with a success or error message. Tracked operations are independent;
settling or failing one never touches another.

Hosts observe notices either by polling Notices or by subscribing to the stream of
updates with Subscribe (the terminal and HTTP adapters do both).
*/
package notify
