package events

const (
	// KindToolCallReceived identifies an inbound tool invocation.
	KindToolCallReceived Kind = "tool_call.received"
	// KindToolCallAnswered identifies an acknowledged tool invocation.
	KindToolCallAnswered Kind = "tool_call.answered"
)

// ToolCallReceived marks an inbound tool invocation from the remote model.
type ToolCallReceived struct {
	Base
	ID        string
	Name      string
	Arguments string
}

// NewToolCallReceived creates a tool call received event.
func NewToolCallReceived(id, name, arguments string) ToolCallReceived {
	return ToolCallReceived{Base: NewBase(KindToolCallReceived), ID: id, Name: name, Arguments: arguments}
}

// ToolCallAnswered marks the outbound acknowledgement of an invocation.
type ToolCallAnswered struct {
	Base
	ID     string
	Name   string
	Result string
}

// NewToolCallAnswered creates a tool call answered event.
func NewToolCallAnswered(id, name, result string) ToolCallAnswered {
	return ToolCallAnswered{Base: NewBase(KindToolCallAnswered), ID: id, Name: name, Result: result}
}
