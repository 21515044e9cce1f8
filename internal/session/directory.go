package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hilsamlabs/workspaces-api/internal/crypto"
	"github.com/hilsamlabs/workspaces-api/internal/database"
	"github.com/hilsamlabs/workspaces-api/internal/ttl"
)

// View is a stored session decorated with derived lease fields for
// presentation.
type View struct {
	Name      string `json:"name"`
	Image     string `json:"image"`
	Password  string `json:"password"`
	TimeLeft  string `json:"time_left"`
	Infinite  bool   `json:"infinite"`
	Uptime    string `json:"uptime"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

// List returns all of the owner's sessions with computed uptime, remaining
// time, and expiry. Records whose container has vanished from the runtime
// are still listed; finite ones are reaped on the next sweep.
func (m *Manager) List(owner string) ([]View, error) {
	if owner == "" || owner == "anonymous" {
		return nil, ErrUnauthorized
	}

	sessions, err := database.ListSessions(owner)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	now := m.clock().Unix()
	views := make([]View, 0, len(sessions))
	for _, s := range sessions {
		password, err := crypto.Decrypt(s.Credential)
		if err != nil {
			log.Printf("WARNING: cannot decrypt credential for %s: %v", s.ContainerName, err)
		}

		v := View{
			Name:     s.ContainerName,
			Image:    s.Image,
			Password: password,
			Uptime:   ttl.FormatClock(now - s.Created),
			URL:      fmt.Sprintf("https://%s.%s", s.ContainerName, m.Domain),
		}
		if ttl.IsInfinite(s.TTL) {
			v.Infinite = true
			v.TimeLeft = ttl.InfiniteMarker
			v.ExpiresAt = "Never"
		} else {
			v.TimeLeft = ttl.FormatClock(ttl.Remaining(s.Created, s.TTL, now))
			v.ExpiresAt = time.Unix(ttl.ExpiresAt(s.Created, s.TTL), 0).UTC().Format(time.RFC3339)
		}
		views = append(views, v)
	}
	return views, nil
}

// Stop removes one session and its container. The ownership check runs
// before any runtime call; a container that already vanished from the
// runtime does not block record removal.
func (m *Manager) Stop(ctx context.Context, owner, name string) error {
	if owner == "" || owner == "anonymous" {
		return ErrUnauthorized
	}

	if _, err := database.GetSession(owner, name); err != nil {
		if database.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("load session: %w", err)
	}

	if err := m.Runtime.StopContainer(ctx, name); err != nil {
		log.Printf("Stop container %s: %v (removing record anyway)", name, err)
	}

	return database.DeleteSession(owner, name)
}

// ToggleAutokill flips a session between infinite and finite mode,
// returning the new mode name.
func (m *Manager) ToggleAutokill(owner, name string, infinite bool) (string, error) {
	if owner == "" || owner == "anonymous" {
		return "", ErrUnauthorized
	}

	if _, err := database.GetSession(owner, name); err != nil {
		if database.IsNotFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load session: %w", err)
	}

	newTTL := ttl.Toggle(infinite)
	if err := database.UpdateSessionTTL(owner, name, newTTL); err != nil {
		return "", fmt.Errorf("update ttl: %w", err)
	}

	if infinite {
		return "infinite", nil
	}
	return "finite", nil
}

// Extend adds time to a finite lease. An infinite session reports
// AlreadyInfinite and is left untouched rather than erroring.
func (m *Manager) Extend(owner, name string, addSeconds int64) (ttl.ExtendResult, error) {
	if owner == "" || owner == "anonymous" {
		return ttl.ExtendResult{}, ErrUnauthorized
	}

	s, err := database.GetSession(owner, name)
	if err != nil {
		if database.IsNotFound(err) {
			return ttl.ExtendResult{}, ErrNotFound
		}
		return ttl.ExtendResult{}, fmt.Errorf("load session: %w", err)
	}

	result := ttl.Extend(s.Created, s.TTL, m.clock().Unix(), addSeconds)
	if result.AlreadyInfinite {
		log.Printf("[EXTEND] %s already infinite", name)
		return result, nil
	}

	log.Printf("[EXTEND] %s: %ds + %ds = %ds", name, result.OldRemaining, result.Added, result.NewTTL)
	if err := database.UpdateSessionTTL(owner, name, result.NewTTL); err != nil {
		return ttl.ExtendResult{}, fmt.Errorf("update ttl: %w", err)
	}
	return result, nil
}
