// Package script reads and writes the textual sketch language.
//
// A script is a sequence of commands, one per entity, separated by commas:
//
//	SketchPoint( 1, [0, 0], layer standard ),
//	SketchPoint( 2, [3, 4], layer standard ),
//	DistanceConstraint( 3, 1, 2, layer standard, distance=5, dimLineOfs=1, arrowSize=1 )
//
// The first integer is the command's own label. Further integers, up to the
// first layer clause or parameter, reference earlier commands by label.
// Bracketed lists are literal vectors. The tail holds an optional
// "layer <name>" clause and key=value parameters; values are numbers,
// vectors, identifiers or nested {key=value, ...} sets.
//
// The command syntax is handled once by the parser. Each entity type
// registers a Rule that turns a parsed Command into an entity.
package script
