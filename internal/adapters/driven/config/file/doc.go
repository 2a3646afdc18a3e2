// Package file provides the TOML-backed configuration store.
// Settings live in a single file under the hanrag config directory;
// nested tables flatten to dot-notation keys on load.
package file
