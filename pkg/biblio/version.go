// Package biblio holds module-level metadata.
package biblio

// Version is the current biblio release.
const Version = "v0.3.0"
