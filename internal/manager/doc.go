// Package manager reloads the commands of a namespace.
//
// A reload has two halves. Prepare fetches the namespace's document from a
// Source and reads it; any failure there leaves the namespace with no
// commands and a warning in the log. Apply compiles each top-level command
// and registers it with the dispatcher set by SetDispatcher, skipping the
// commands that fail. Reload runs both.
//
// Watch re-runs a callback when documents under a directory change.
package manager
