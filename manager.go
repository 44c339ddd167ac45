package agentsmanager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sandeshnaroju/agents-manager/agent"
	"github.com/sandeshnaroju/agents-manager/logging"
)

// ErrDuplicateAgent is returned by Register when an agent with the same name
// is already registered and overwrite was not requested.
var ErrDuplicateAgent = errors.New("agent already registered")

// ErrUnknownAgent is returned by Run when no agent with the given name is
// registered. No provider call is made in that case.
var ErrUnknownAgent = errors.New("unknown agent")

// Options configure a Manager instance.
type Options struct {
	// Logger receives registration and dispatch events (defaults to NoOpLogger).
	Logger logging.Logger
}

// Manager owns a registry of agents keyed by name and dispatches user
// messages to them. Public methods are safe for concurrent use; the registry
// is mutated only by explicit registration.
type Manager struct {
	mu     sync.RWMutex
	agents map[string]*agent.Agent
	logger logging.Logger
}

// New creates an empty Manager.
func New(optFns ...func(o *Options)) *Manager {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Manager{
		agents: make(map[string]*agent.Agent),
		logger: opts.Logger,
	}
}

// RegisterOption customizes a single Register call.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	overwrite bool
}

// WithOverwrite allows Register to replace an existing agent of the same name.
func WithOverwrite() RegisterOption {
	return func(o *registerOptions) { o.overwrite = true }
}

// Register inserts an agent into the registry. It fails with
// ErrDuplicateAgent if the name already exists, unless WithOverwrite is given.
func (m *Manager) Register(a *agent.Agent, opts ...RegisterOption) error {
	var ro registerOptions
	for _, o := range opts {
		o(&ro)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.agents[a.Name()]; exists && !ro.overwrite {
		return fmt.Errorf("%w: %q", ErrDuplicateAgent, a.Name())
	}

	m.agents[a.Name()] = a
	m.logger.Info("manager.agent.registered", "agent", a.Name(), "tools", len(a.Tools()))
	return nil
}

// Get retrieves a registered agent by name.
func (m *Manager) Get(name string) (*agent.Agent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[name]
	return a, ok
}

// Names returns the registered agent names in sorted order.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.agents))
	for name := range m.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run dispatches a user message to the named agent and returns its final
// answer unchanged. It fails with ErrUnknownAgent if the name is not
// registered.
func (m *Manager) Run(ctx context.Context, name, message string) (string, error) {
	a, ok := m.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAgent, name)
	}

	m.logger.Debug("manager.run", "agent", name)
	return a.Run(ctx, message)
}

// RunStream behaves like Run but forwards partial assistant text to fn as it
// arrives.
func (m *Manager) RunStream(ctx context.Context, name, message string, fn func(delta string)) (string, error) {
	a, ok := m.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAgent, name)
	}

	m.logger.Debug("manager.run", "agent", name, "stream", true)
	return a.RunStream(ctx, message, fn)
}
