// Package nodeattrs holds module-wide metadata.
package nodeattrs

// Version is the release version reported by the CLI.
const Version = "0.1.0"
