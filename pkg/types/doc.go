// Package types defines the catalog, unit, loan, and request entities, the
// unit status state machine, the aggregate-status derivation, the error
// taxonomy, and the configuration for the biblio circulation system.
package types
