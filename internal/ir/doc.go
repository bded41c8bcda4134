// Package ir provides the declaration model for Brick ontology properties.
//
// This package contains the raw, pre-compilation types: one PropertyDecl per
// authored property, the closed Flag enumeration, and the Namespace of
// externally declared types. All other internal packages import ir; ir
// imports nothing internal.
//
// Key design constraints:
//   - Names are NFC normalized at the decoding boundary
//   - Flags are a closed set; unknown spellings are configuration errors
//   - Canonical JSON (RFC 8785) is the only serialization used for hashing
//   - All JSON and YAML keys use lowerCamelCase, matching the authored table
package ir
