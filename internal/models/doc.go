// Package models defines the core domain models for Divvy.
//
// # Models
//
//   - User: registered account with a cached credit balance
//   - Bill: a shared expense created by one user and split among participants
//   - Participant: one user's share of one bill, mutated exactly once (when they pay)
//   - Payment: immutable record of a completed charge
//   - CreditEntry: append-only credit ledger record
//   - GiftCard: artifact of a credit redemption
//
// # Design Principles
//
//  1. All monetary values are decimal.Decimal, never float64. Currency arithmetic
//     with binary floats is how split totals stop adding up.
//  2. Ledger entries are append-only; User.Credits is a cached checkpoint that must
//     equal the BalanceAfter of the user's most recent entry.
//  3. Relationships use ID strings rather than pointers to avoid circular references.
//  4. Timestamps are Unix seconds.
package models
