// Package session implements the workspace session lifecycle: provisioning
// containers, listing and stopping an owner's sessions, lease mutations,
// and the expiry sweep. The session table is the source of truth; the
// container runtime is reconciled against it, never the other way around.
package session

import (
	"time"

	"github.com/hilsamlabs/workspaces-api/internal/config"
	"github.com/hilsamlabs/workspaces-api/internal/runtime"
)

type Manager struct {
	Runtime runtime.ContainerRuntime

	Domain       string
	Registry     string
	Network      string
	DesktopUser  string
	DesktopPort  int
	ReadyTimeout time.Duration

	// now is swappable in tests.
	now func() time.Time
}

func NewManager(rt runtime.ContainerRuntime) *Manager {
	return &Manager{
		Runtime:      rt,
		Domain:       config.Cfg.Domain,
		Registry:     config.Cfg.Registry,
		Network:      config.Cfg.DockerNetwork,
		DesktopUser:  config.Cfg.DesktopUser,
		DesktopPort:  config.Cfg.DesktopPort,
		ReadyTimeout: 30 * time.Second,
		now:          time.Now,
	}
}

func (m *Manager) clock() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}

// SetClockForTest overrides the manager's time source.
func (m *Manager) SetClockForTest(now func() time.Time) {
	m.now = now
}
