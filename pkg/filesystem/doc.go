// Package filesystem provides implementations of the types.FS interface.
//
// NewOS returns an implementation backed by the real operating system
// filesystem and is what the CLI uses. NewAferoFS wraps any afero.Fs,
// which lets tests run against an in-memory filesystem.
package filesystem
