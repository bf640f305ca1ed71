// Package table implements the data model of the record store: column kinds,
// dynamically typed row values, schemas and the row validator, and the table itself.
//
// Key Components:
//
//   - ColumnKind: The declared kind of a column (String, Integer, Float, Boolean, Object).
//     Its text form is the enum name, decoding is case-insensitive.
//
//   - Value: A tagged variant holding one row value. Besides the five column kinds it can
//     hold Null and Array so that undeclared keys of a row survive a round trip. Integers
//     and floats are distinct kinds in every encoding: JSON writes integral floats with a
//     trailing ".0", YAML uses explicit tags, gob and the binary form carry a kind byte.
//
//   - Schema: The ordered list of declared columns. Schema.Validate checks a row against
//     it and returns a *ValidationError for the first failing column:
//
//     String  <- string
//     Integer <- integer
//     Float   <- integer or float
//     Boolean <- boolean
//     Object  <- object
//
//   - Table: A named, schema bound, append-only collection of rows identified by a
//     random UUID. Info is its descriptor (id, name, columns, row count).
//
//   - BinaryWriter / BinaryReader: A compact varint based encoding of values, rows and
//     columns. It is shared by the binary snapshot codec and the binary RPC serializer.
//
// Thread Safety:
//
//	Nothing in this package locks. A Table is owned by a store which serializes access.
package table
