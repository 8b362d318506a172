// Package jsonschema derives JSON Schema documents from Go types and
// validates decoded JSON against them.
//
// [GenerateJSONSchema] walks a type with reflection. Field names come from the
// json tag and the jsonschema tag adds a description, enum values or an
// explicit required marker:
//
//	type Address struct {
//		City string `json:"city" jsonschema:"description=City or locality,required"`
//	}
//
// The generated document is the response schema sent to the model, and
// [Schema.Compile] turns the same document into a [Validator] so replies can
// be checked locally before they are decoded into T.
package jsonschema
