// Package models defines the core domain models for Fairsplit.
//
// # Models
//
//   - User: a person who can belong to groups and participate in expenses
//   - Group: a set of users who share expenses
//   - Expense: a shared cost paid by one member, with frozen per-member splits
//   - Split: one participant's share of an expense
//   - Balance: a derived per-group, per-user net position
//   - UserBalance: a derived cross-group aggregate for one user
//
// # Design Principles
//
// 1. **Integer money**: all amounts are integer minor units (cents).
// Floating-point values never touch ledger arithmetic.
//
// 2. **Append-only ledger**: expenses and their splits are created atomically
// and never mutated or deleted. Balances are projections recomputed from the
// ledger, not stored state.
//
// 3. **Avoid circular references**: models reference each other by ID.
package models
