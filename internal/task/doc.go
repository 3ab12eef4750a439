// Package task runs long deck generations in the background. Tasks are saved
// before they are queued, so a restart can rebuild pending and interrupted
// work from the store through a Registry of per-type constructors.
package task
