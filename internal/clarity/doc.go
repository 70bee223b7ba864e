// Package clarity provides the typed values exchanged with contracts.
//
// Values are used as transaction arguments and as expected values in
// assertions. The package imports nothing internal; every other package
// builds on it.
//
// Key design constraints:
//   - Value is sealed; only the types in value.go implement it
//   - Constructors are pure and never fail; Validate reports values a
//     chain must reject
//   - uint is 128 bits wide, backed by holiman/uint256
//   - utf8 strings are NFC normalized on construction
//   - Canonical JSON (canonical.go) is the only encoding used for hashing,
//     storage and golden traces
package clarity
