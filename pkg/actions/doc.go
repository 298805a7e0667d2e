/*
Package actions contains the built-in modal actions of the storefront client.

Each action pairs a content strategy (the form it renders) with an optional handler.
Handlers follow the same contract, in order:

 1. Validate the form and context data; the first violated rule is reported.
 2. Dispatch the collaborator service call (tracked by the notification channel).
 3. On success, mutate the entity cache through Invocation.Commit.
 4. On failure, comment creation appends the attempted payload to the fallback store.

NewRegistry builds the closed action table once; there is no runtime plugin loading.
*/
package actions
