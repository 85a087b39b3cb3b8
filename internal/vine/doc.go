// Package vine parses, validates, queries, edits, and serializes VINE task graphs.
//
// A VINE document is line oriented:
//
//	vine 1.0.0
//	title: Release plan
//	---
//	[tests] Write tests (started)
//	Cover the parser and the validator.
//	-> design
//	---
//	[design] Design the API (complete) @owner(ana,li)
//	> Keep the mutation API pure.
//	@artifact text/markdown docs/api.md
//	---
//	ref [ship] Ship it (./ship.vine)
//	-> tests
//
// The first line is the magic line carrying the schema version. Metadata lines
// (title, delimiter, prefix) follow until the literal "---" terminator. Task
// blocks are separated by the configured delimiter, which defaults to "---".
// The last block is the root of the graph.
//
// # Tasks
//
// A block header is either a concrete task, "[id] Name (status)", or a
// reference to another document, "ref [id] Name (uri)". Both accept a trailing
// annotation suffix such as "@owner(ana,li) @size(m)". Body lines are
// classified by prefix:
//
//   - "-> id": dependency
//   - "> text": decision
//   - "@class mime uri": attachment (concrete tasks only; class is artifact,
//     guidance, or file)
//   - anything else: description
//
// # Status Values
//
//   - "complete"
//   - "started"
//   - "reviewing" (versioned documents only)
//   - "planning"
//   - "notstarted"
//   - "blocked"
//
// # Validation
//
// Parse and every mutation run Validate, which checks, in order, that the
// graph has at least one task, that every dependency exists, that there are
// no cycles, that every task is reachable from the root, and that every
// reference task has a URI. The first failing check is returned as a
// *ValidationError.
//
// # Canonical Form
//
// Serialize writes metadata only when it differs from the defaults, sorts
// dependencies, keeps decisions in insertion order, and groups attachments as
// artifact, guidance, file. Serialize(Parse(Serialize(g))) == Serialize(g).
//
// # Legacy Documents
//
// Documents written before the magic line existed have no preamble and
// separate blocks with blank lines. ParseWithOptions accepts them when
// ParseOptions.AllowLegacy is set; such graphs carry LegacyVersion and are
// written back in the same grammar.
//
// The package performs no I/O. Graph values are never modified by the
// methods in this package, so a *Graph may be shared between goroutines.
package vine
