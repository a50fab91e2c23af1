package api

import "github.com/danielgtaylor/huma/v2"

// envelopeVersion is bumped when the response contract changes shape.
const envelopeVersion = 1

// Envelope is the response contract every JSON endpoint follows:
// {"v": 1, "success": true, "data": ...} on success,
// {"v": 1, "success": false, "error": ...} on failure.
type Envelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
	Error   any  `json:"error,omitempty"`
}

// EnvelopeTransformer wraps every huma response body in the envelope.
// Raw byte bodies (file downloads) pass through untouched.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if v == nil {
		return v, nil
	}

	switch v.(type) {
	case []byte, *Envelope, Envelope:
		return v, nil
	}

	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{V: envelopeVersion, Success: false, Error: apiErr}, nil
	}

	// Huma passes the status as a string like "200" or "404".
	if len(status) > 0 && status[0] >= '4' {
		return &Envelope{V: envelopeVersion, Success: false, Error: v}, nil
	}

	return &Envelope{V: envelopeVersion, Success: true, Data: v}, nil
}
