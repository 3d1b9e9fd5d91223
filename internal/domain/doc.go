// Package domain contains shared domain types used across entity sub-packages.
// Entity-specific types live in sub-packages (domain/todo, domain/page).
// This root package holds the error taxonomy: sentinel errors, the typed
// ValidationError, NotFoundError and DatabaseError values, and KindOf, the
// single classifier used by the transport layer.
package domain
