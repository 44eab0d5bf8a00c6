// Package store implements hierarchical, scoped key-value state with
// synchronous change notification.
//
// Each Store is one named scope with a fixed set of keys. Entering a scope
// under a parent composes an immutable Scopes table holding the new scope
// and every ancestor; identifiers must be unique within that chain, so the
// same id may be reused in sibling subtrees but never below itself.
//
//	global, _ := store.Bootstrap("Global", store.State{"foo": "Hi"})
//	a, _ := store.EnterScope(global, "A", store.State{"hi": "merong"})
//	v, _ := a.Scopes().GetState("Global", "foo")
//
// Writes notify every listener registered for the key, in registration
// order, before SetState returns. Values are JSON-like and are copied on the
// way in and out.
//
// Beyond the core store the package offers bindings (ReadAndSubscribe,
// Observe), expression evaluation over visible state (expr by default, CEL
// and goja as alternatives), activity events, tracing spans, snapshots and
// typed decoding.
package store
