// Package models defines the core domain models for Ridesplit.
//
// # Models
//
//   - Companion: a participant in the shared ride arrangement
//   - Trip: one calendar day of travel for one companion (outbound and/or return leg)
//   - Payment: a signed monetary record owned by exactly one companion
//   - CompanionLedger / Snapshot: derived read models returned to callers
//
// # Design Principles
//
// 1. **Derived balances**: a companion's balance is never stored; it is the sum of the
// payments the companion currently owns.
// 2. **Stable payment ids**: a payment keeps its id for its whole life, including
// when it is transferred to another companion.
// 3. **Avoid circular references**: relationships use ID strings instead of pointers.
// 4. **Canonical dates**: trip dates are ISO calendar days (YYYY-MM-DD), so they sort
// and compare as plain strings.
package models
