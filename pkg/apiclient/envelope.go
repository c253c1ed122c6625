package apiclient

import (
	"bytes"
	"encoding/json"
)

// ResponseMode selects how successful HTTP bodies are interpreted.
type ResponseMode int

const (
	// ModeAuto unwraps bodies shaped like an Envelope and passes any other
	// body through unchanged.
	ModeAuto ResponseMode = iota
	// ModeEnvelope requires an Envelope; other bodies are business failures.
	ModeEnvelope
	// ModeRaw never unwraps.
	ModeRaw
)

func (m ResponseMode) String() string {
	switch m {
	case ModeEnvelope:
		return "envelope"
	case ModeRaw:
		return "raw"
	default:
		return "auto"
	}
}

// ParseResponseMode maps a config string to a ResponseMode, defaulting to ModeAuto.
func ParseResponseMode(s string) ResponseMode {
	switch s {
	case "envelope", "structured":
		return ModeEnvelope
	case "raw", "passthrough":
		return ModeRaw
	default:
		return ModeAuto
	}
}

// Envelope is the structured server wrapper
// `{success, code, message, data, timestamp}`.
type Envelope struct {
	Success   *bool
	Code      *float64
	Message   string
	Data      json.RawMessage
	Timestamp json.RawMessage
}

// Succeeded is true when success is true or code is within [200, 300).
func (e *Envelope) Succeeded() bool {
	if e.Success != nil && *e.Success {
		return true
	}
	return e.Code != nil && *e.Code >= 200 && *e.Code < 300
}

func (e *Envelope) CodeInt() int {
	if e.Code == nil {
		return 0
	}
	return int(*e.Code)
}

// Body is the decoded form of a successful response: exactly one of Envelope
// or Raw is meaningful.
type Body struct {
	Envelope *Envelope
	Raw      json.RawMessage
}

func (b Body) IsEnvelope() bool { return b.Envelope != nil }

// DecodeBody attempts a structured-envelope decode and falls back to raw
// pass-through. A body is an envelope when it is a JSON object carrying a
// boolean `success`, or a numeric `code` alongside `message` or `data`.
func DecodeBody(raw []byte) Body {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Body{Raw: raw}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return Body{Raw: raw}
	}

	env := &Envelope{}
	if v, ok := fields["success"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			env.Success = &b
		}
	}
	if v, ok := fields["code"]; ok {
		var f float64
		if err := json.Unmarshal(v, &f); err == nil {
			env.Code = &f
		}
	}
	if env.Success == nil && env.Code == nil {
		return Body{Raw: raw}
	}
	if env.Success == nil {
		// a bare numeric code is common in raw payloads
		_, hasMessage := fields["message"]
		_, hasData := fields["data"]
		if !hasMessage && !hasData {
			return Body{Raw: raw}
		}
	}
	if v, ok := fields["message"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			env.Message = s
		}
	}
	env.Data = fields["data"]
	env.Timestamp = fields["timestamp"]
	return Body{Envelope: env}
}

// serverMessage returns the string `message` field of a JSON object body.
func serverMessage(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ""
	}
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &body); err != nil || len(body.Message) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Message, &s); err != nil {
		return ""
	}
	return s
}
