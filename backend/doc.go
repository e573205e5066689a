// Package backend manages GPU adapter selection.
//
// Adapter implementations register themselves by name, usually from an
// init function triggered by a blank import:
//
//	import _ "github.com/Exiver-Labs/xeokit-sdk/backend/halgpu"
//
// [Default] opens the best available adapter: the HAL-backed GPU adapter
// when it is registered and a device opens, or the in-memory fallback
// which always works and is what headless tooling and tests use. [Open]
// selects a backend by name when the caller wants a specific one.
package backend
