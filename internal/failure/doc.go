// Package failure is the error value shared by every torilate layer.
//
// A failure is created once at the point where something went wrong
// ([New]) and then enriched by each enclosing layer ([Wrap]) with one more
// context segment. The kind set at creation never changes, so the process
// exit status and the base message stay tied to the terminal cause while
// the segment chain records how the request got there.
//
// Two renderings exist: concise, which shows only the outermost segment,
// and verbose, which shows the whole chain outer to inner.
package failure
