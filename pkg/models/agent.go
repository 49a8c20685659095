package models

// AgentType identifies which provider backs a worker agent.
type AgentType string

const (
	// AgentTypeGemini backs an agent with the Gemini CLI.
	AgentTypeGemini AgentType = "gemini"
	// AgentTypeCodex backs an agent with the Codex CLI.
	AgentTypeCodex AgentType = "codex"
	// AgentTypeCopilot backs an agent with the Copilot CLI.
	AgentTypeCopilot AgentType = "copilot"
)

// Capability is a tag describing what an agent is suited for.
type Capability string

const (
	// CapabilityCodeGeneration marks agents suited for writing code.
	CapabilityCodeGeneration Capability = "code_generation"
	// CapabilityCodeReview marks agents suited for reviewing code.
	CapabilityCodeReview Capability = "code_review"
	// CapabilityGeneralQA marks agents suited for general questions.
	CapabilityGeneralQA Capability = "general_qa"
	// CapabilitySynthesis marks agents suited for combining responses.
	CapabilitySynthesis Capability = "synthesis"
)

// AgentInfo is a snapshot descriptor of a registered agent.
type AgentInfo struct {
	// Name is the unique agent name.
	Name string `json:"name"`
	// Type identifies the backing provider.
	Type AgentType `json:"agent_type"`
	// Capabilities lists the agent's capability tags.
	Capabilities []Capability `json:"capabilities"`
	// Status is the agent's current status (idle or busy).
	Status string `json:"status"`
}

// HasCapability returns true if the agent declares the given capability.
func (a AgentInfo) HasCapability(cap Capability) bool {
	for _, c := range a.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}
