package agent

import (
	"sync"

	"github.com/quorum-ai/quorum/pkg/models"
)

// Registry is a concurrency-safe map from agent name to agent. All
// operations serialize through one lock; iteration never observes a
// half-updated map.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds an agent, replacing any existing agent with the same name.
func (r *Registry) Register(a Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.Name()] = a
}

// Get returns the agent with the given name, or nil if absent.
func (r *Registry) Get(name string) Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.agents[name]
}

// List returns a snapshot of all registered agent descriptors.
func (r *Registry) List() []models.AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]models.AgentInfo, 0, len(r.agents))
	for _, a := range r.agents {
		infos = append(infos, a.Info())
	}
	return infos
}

// GetByCapability returns descriptors of agents declaring the capability.
func (r *Registry) GetByCapability(cap models.Capability) []models.AgentInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var infos []models.AgentInfo
	for _, a := range r.agents {
		if info := a.Info(); info.HasCapability(cap) {
			infos = append(infos, info)
		}
	}
	return infos
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
