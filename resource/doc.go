// Package resource bounds the side work of a training run: it limits how
// many background jobs (checkpoint saves) run concurrently and throttles
// their IO so they cannot starve the training loop.
package resource
