package support

import "fmt"

// TypeHandler handles requests of a single type and forwards the rest.
type TypeHandler struct {
	Link
	name   string
	typ    string
	format string
}

// NewTypeHandler returns a handler named name that accepts requests whose
// type equals typ. The reported message is format applied to the request
// content.
func NewTypeHandler(name, typ, format string) *TypeHandler {
	return &TypeHandler{name: name, typ: typ, format: format}
}

// NewGeneralHandler handles "general" requests.
func NewGeneralHandler() *TypeHandler {
	return NewTypeHandler("GeneralSupportHandler", TypeGeneral,
		"GeneralSupportHandler: handling general request: %s")
}

// NewTechnicalHandler handles "technical" requests.
func NewTechnicalHandler() *TypeHandler {
	return NewTypeHandler("TechnicalSupportHandler", TypeTechnical,
		"TechnicalSupportHandler: handling technical request: %s")
}

// NewComplaintsHandler handles "complaint" requests.
func NewComplaintsHandler() *TypeHandler {
	return NewTypeHandler("ComplaintsHandler", TypeComplaint,
		"ComplaintsHandler: handling complaint: %s")
}

// Name returns the handler name.
func (h *TypeHandler) Name() string { return h.name }

// Handle implements Handler.
func (h *TypeHandler) Handle(req Request) Outcome {
	if req.Type() != h.typ {
		return h.Forward(req)
	}
	return Outcome{
		Handler: h.name,
		Handled: true,
		Message: fmt.Sprintf(h.format, req.Content()),
	}
}

// EscalationHandler accepts every request. It terminates the default chain.
type EscalationHandler struct {
	Link
}

// NewEscalationHandler returns a catch-all handler.
func NewEscalationHandler() *EscalationHandler {
	return &EscalationHandler{}
}

// Name returns the handler name.
func (h *EscalationHandler) Name() string { return "EscalationHandler" }

// Handle implements Handler. It never forwards.
func (h *EscalationHandler) Handle(req Request) Outcome {
	return Outcome{
		Handler: h.Name(),
		Handled: true,
		Message: "Escalating request: " + req.Content(),
	}
}
