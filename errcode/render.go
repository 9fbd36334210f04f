package errcode

// Envelope is the JSON error body sent to clients:
//
//	{"error": {"code": "...", "message": "...", "retry_after": 60, "details": {...}}}
type Envelope struct {
	Error Payload `json:"error"`
}

// Payload is the inner error object of the envelope
type Payload struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	RetryAfter *int64                 `json:"retry_after,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// ToEnvelope renders the error as a client-facing JSON envelope.
// retryAfter, when >= 0, is included as whole seconds.
func (e *APIError) ToEnvelope(retryAfter int64) Envelope {
	p := Payload{
		Code:    e.code,
		Message: e.msg,
	}
	if retryAfter >= 0 {
		p.RetryAfter = &retryAfter
	}
	if len(e.details) > 0 {
		p.Details = e.details
	}
	return Envelope{Error: p}
}
