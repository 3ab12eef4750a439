// Package store defines the persistence interfaces for lesson plans and decks,
// the list parameters shared by every list endpoint, and the errors that
// implementations map their driver errors onto.
//
// Implementations live in platform/postgres. Every store accepts a DBTX so the
// same code runs on a *sql.DB or inside RunInTransaction.
package store
