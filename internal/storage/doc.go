// Package storage persists extracted sub-pictures.
//
// Files are named {base}{n}.{ext}. The first counter n is derived from the
// destination on every call: one more than the number of existing names that
// contain base. Names that are already taken are skipped, so repeated saves
// into the same destination never overwrite earlier output.
//
// Two stores are provided:
//   - LocalStore: a directory on the local filesystem
//   - S3Store: a bucket, with the directory used as a key prefix
//
// Both check the destination before writing. A missing destination is an
// ErrInvalidDirectory unless Options.CreateDirectory is set.
package storage
