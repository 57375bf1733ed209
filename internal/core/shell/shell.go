// Package shell defines the presentation callbacks a workflow fires once it
// settles. None of them return a value the caller depends on.
package shell

// Shell receives notifications and navigation signals.
type Shell interface {
	// Success shows a transient success notification.
	Success(message string)
	// Error shows a transient error notification.
	Error(message string)
	// Close asks the presentation to dismiss the form.
	Close()
	// Refresh asks the presentation to reload the parent listing.
	Refresh()
}
