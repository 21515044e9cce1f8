package session

import (
	"context"
	"testing"
	"time"

	"github.com/hilsamlabs/workspaces-api/internal/database"
	"github.com/hilsamlabs/workspaces-api/internal/runtime"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeRuntime records runtime calls and fails on demand.
type fakeRuntime struct {
	pullErr   error
	launchErr error
	stopErr   error
	execErr   error
	execExit  int

	pulled   []string
	launched []runtime.LaunchParams
	stopped  []string
	execed   []string
}

func (f *fakeRuntime) PullImage(_ context.Context, image string) error {
	f.pulled = append(f.pulled, image)
	return f.pullErr
}

func (f *fakeRuntime) LaunchWorkspace(_ context.Context, params runtime.LaunchParams) error {
	if f.launchErr != nil {
		return f.launchErr
	}
	f.launched = append(f.launched, params)
	return nil
}

func (f *fakeRuntime) StopContainer(_ context.Context, name string) error {
	f.stopped = append(f.stopped, name)
	return f.stopErr
}

func (f *fakeRuntime) ExecInContainer(_ context.Context, name string, _ []string) (string, int, error) {
	f.execed = append(f.execed, name)
	return "", f.execExit, f.execErr
}

func (f *fakeRuntime) WaitRunning(_ context.Context, _ string, _ time.Duration) bool {
	return true
}

var _ runtime.ContainerRuntime = (*fakeRuntime)(nil)

func setupTestDB(t *testing.T) {
	t.Helper()
	var err error
	database.DB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.DB.AutoMigrate(&database.Session{}, &database.Setting{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
}

// newTestManager wires a manager with the fake runtime and a fixed clock.
func newTestManager(t *testing.T, rt *fakeRuntime, now int64) *Manager {
	t.Helper()
	m := &Manager{
		Runtime:      rt,
		Domain:       "workspaces.test.local",
		Registry:     "registry.test.local:3002",
		Network:      "proxy",
		DesktopUser:  "workspaces-user",
		DesktopPort:  6901,
		ReadyTimeout: time.Millisecond,
	}
	m.SetClockForTest(func() time.Time { return time.Unix(now, 0) })
	return m
}

func countSessions(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := database.DB.Model(&database.Session{}).Count(&count).Error; err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	return count
}
