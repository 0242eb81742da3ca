// Package schema validates decoded JSON payloads before they are bound to
// typed structs.
//
// A Schema maps field names to Types. Fields are required unless wrapped in
// Optional, in which case an absent key or a JSON null passes:
//
//	s := schema.Schema{
//	    "color":        schema.Enum("RED", "YELLOW", "GREEN", "BLUE"),
//	    "reasoning":    schema.NonEmpty(),
//	    "risk_factors": schema.Optional(schema.Slice(schema.String())),
//	    "pain_scale":   schema.Optional(schema.IntRange(1, 10)),
//	}
//
//	if err := schema.Validate(s, payload); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // each e is a *ValidationError
//	    }
//	}
//
// Schemas can also be written as type strings, where a trailing "?" marks
// the field optional:
//
//	s, err := schema.ParseTypeMap(map[string]string{
//	    "department": "text",
//	    "room_type":  "string?",
//	    "orders":     "[string]?",
//	})
package schema
