// Package stamp fingerprints file state and task outputs so that the build
// engine can decide whether a recorded dependency is still consistent
// without re-reading or re-computing everything it points at.
//
// A stamper is a policy: it trades precision for speed. Stamping the same
// file or output twice yields equal stamps iff the underlying state is
// unchanged under that policy. A nonexistent file stamps to a distinguished
// absent value, so dependencies on file creation are trackable.
package stamp
