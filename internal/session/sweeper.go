package session

import (
	"context"
	"fmt"
	"log"

	"github.com/hilsamlabs/workspaces-api/internal/database"
	"github.com/hilsamlabs/workspaces-api/internal/ttl"
)

// Sweep removes every finite session whose lease has elapsed, stopping its
// container first. Infinite sessions are never loaded. Per-session failures
// are logged and skipped; a confirmed-expired record never survives a sweep
// even when its container is already gone or refuses to stop. Returns the
// number of sessions reaped.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	sessions, err := database.ListFiniteSessions()
	if err != nil {
		return 0, fmt.Errorf("load finite sessions: %w", err)
	}

	now := m.clock().Unix()
	reaped := 0
	for _, s := range sessions {
		if ttl.ExpiresAt(s.Created, s.TTL) > now {
			continue
		}

		if err := m.Runtime.StopContainer(ctx, s.ContainerName); err != nil {
			log.Printf("Sweep: stop %s: %v (deleting record anyway)", s.ContainerName, err)
		}

		if err := database.DeleteSession(s.OwnerID, s.ContainerName); err != nil {
			log.Printf("Sweep: delete record %s/%s: %v", s.OwnerID, s.ContainerName, err)
			continue
		}
		log.Printf("Sweep: cleaned up expired session %s", s.ContainerName)
		reaped++
	}
	return reaped, nil
}
