// Package store provides file-based persistence for vkrelay's client state.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking. Stored files live under the user's configured home
// directory.
//
// The package includes stores for:
//   - Paired-host credentials, encrypted at rest (PairingFileStore)
//   - The last active host id (ActiveHostFileStore)
//
// PairingFileStore also fans out change notifications: Save invokes every
// subscriber synchronously so downstream caches evict before anyone can
// observe the rotated credential.
package store
