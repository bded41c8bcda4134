// Package harness runs conformance scenarios against the property compiler.
//
// A scenario is a YAML file that declares a small property set inline,
// states whether it should compile, and lists assertions over the
// resulting graph or the reported violations.
//
// # Scenario Format
//
//	name: feeds_backfill
//	description: "A one-sided inverse is back-filled on the target"
//	types: [Equipment]
//	valid: true
//	properties:
//	  feeds:
//	    inverseOf: isFedBy
//	    expectedDomain: Equipment
//	  isFedBy: {}
//	assertions:
//	  - type: inverse
//	    property: isFedBy
//	    value: feeds
//	  - type: advisory
//	    kind: OneSidedInverse
//	    property: isFedBy
//
// # Assertion Types
//
//   - edge: the graph has the edge subject/predicate/object
//   - edge_count: the graph has exactly count edges
//   - inverse: property's inverse is value ("" for none)
//   - ancestors, descendants: the transitive hierarchy equals values
//   - expected_domain, expected_range: inherited expected types equal values
//   - error: a violation of kind involving properties was reported
//   - error_count: exactly count violations were reported
//   - advisory: an advisory of kind was reported for property
//
// Every compiled graph is also written to an in-memory snapshot archive
// and read back, so each scenario checks that persistence keeps the hash.
package harness
