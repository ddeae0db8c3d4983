// Package jsonschema reads JSON Schema (draft 2020-12) documents as forms.
//
// The root object schema is the form. Additional forms can be declared with
// an x-schemaform "forms" list whose entries point at sub-schemas:
//
//	"x-schemaform": {
//	  "forms": [
//	    {"id": "address", "title": "Address", "ref": "#/$defs/address"}
//	  ]
//	}
//
// $ref is resolved within the document and, when the adapter has a loader,
// against sibling documents. Properties map to controls the same way the
// OpenAPI adapter maps request bodies.
package jsonschema
