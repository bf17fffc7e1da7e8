// Package event provides the synchronous event bus that connects the
// command line components to their collaborators.
//
// Events use hierarchical topics with dot notation:
//
//	search.request   - a page search should run (or be cleared)
//	message.error    - a single-line error for the status bar
//	config.changed   - a setting was modified
//
// Subscriptions support wildcard patterns:
//
//	message.*   - matches message.error, message.info
//	config.**   - matches config.changed and anything below it
//
// All delivery is synchronous. A call to Publish returns only after every
// matching handler has run, and handlers run in the order they subscribed,
// so observers see events in emission order.
package event
