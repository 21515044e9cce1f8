package session

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/hilsamlabs/workspaces-api/internal/crypto"
	"github.com/hilsamlabs/workspaces-api/internal/database"
	"github.com/hilsamlabs/workspaces-api/internal/logutil"
	"github.com/hilsamlabs/workspaces-api/internal/runtime"
)

// ProvisionResult is returned to the caller after a successful provision.
// CredentialWarning marks the degraded case where the container is running
// but the in-container password setup failed; the session still exists.
type ProvisionResult struct {
	URL               string `json:"url"`
	Username          string `json:"username"`
	Password          string `json:"password"`
	TTL               int64  `json:"ttl"`
	Name              string `json:"name"`
	CredentialWarning bool   `json:"credential_warning,omitempty"`
}

// containerName derives a globally unique name from owner and image. The
// random suffix makes a collision check against the store unnecessary.
func containerName(owner, image string) string {
	u := uuid.New()
	suffix := hex.EncodeToString(u[:4])
	return fmt.Sprintf("workspaces-%s-%s-%s", owner, strings.ReplaceAll(image, "/", "-"), suffix)
}

// Provision pulls the image, launches a workspace container, sets its VNC
// password, and records the session. Pull and launch failures abort before
// anything is persisted; credential setup is best-effort.
func (m *Manager) Provision(ctx context.Context, owner, image string, ttlSeconds int64) (*ProvisionResult, error) {
	if owner == "" || owner == "anonymous" {
		return nil, ErrUnauthorized
	}
	if ttlSeconds < 0 {
		ttlSeconds = 0
	}

	fullImage := fmt.Sprintf("%s/%s:latest", m.Registry, image)
	name := containerName(owner, image)

	log.Printf("[START] Pulling %s for %s", logutil.SanitizeForLog(fullImage), name)
	if err := m.Runtime.PullImage(ctx, fullImage); err != nil {
		return nil, &ProvisionError{Stage: "pull", Image: fullImage, Err: err}
	}

	if err := m.Runtime.LaunchWorkspace(ctx, runtime.LaunchParams{
		Name:         name,
		Image:        fullImage,
		Network:      m.Network,
		InternalPort: m.DesktopPort,
		Labels:       runtime.RoutingLabels(name, m.Domain, m.Network, m.DesktopPort),
	}); err != nil {
		return nil, &ProvisionError{Stage: "run", Image: fullImage, Err: err}
	}
	log.Printf("[START] Started container %s", name)

	password := generatePassword()
	warning := !m.configureCredential(ctx, name, password)
	if warning {
		log.Printf("[START] Credential setup warning for %s: session is still provisioned", name)
	}

	encrypted, err := crypto.Encrypt(password)
	if err != nil {
		return nil, fmt.Errorf("encrypt credential: %w", err)
	}

	if err := database.UpsertSession(&database.Session{
		OwnerID:       owner,
		ContainerName: name,
		Image:         fullImage,
		Credential:    encrypted,
		Created:       m.clock().Unix(),
		TTL:           ttlSeconds,
	}); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &ProvisionResult{
		URL:               fmt.Sprintf("https://%s.%s", name, m.Domain),
		Username:          m.DesktopUser,
		Password:          password,
		TTL:               ttlSeconds,
		Name:              name,
		CredentialWarning: warning,
	}, nil
}

// configureCredential waits for the desktop service to come up, then sets
// the VNC password and signals the server to reload. Returns false on any
// failure; the caller treats that as a warning, not an error.
func (m *Manager) configureCredential(ctx context.Context, name, password string) bool {
	if !m.Runtime.WaitRunning(ctx, name, m.ReadyTimeout) {
		log.Printf("[START] Container %s not running before credential setup", name)
	}

	cmd := []string{
		"/bin/bash", "-c",
		fmt.Sprintf("cd /home/kasm-user && echo -e '%s\\n%s\\n' | vncpasswd -u %s -w && kill -HUP $(pgrep -f kasmvnc)",
			password, password, m.DesktopUser),
	}
	output, exitCode, err := m.Runtime.ExecInContainer(ctx, name, cmd)
	if err != nil {
		log.Printf("[START] Credential exec failed for %s: %v", name, err)
		return false
	}
	if exitCode != 0 {
		log.Printf("[START] Credential exec exited %d for %s: %s", exitCode, name, logutil.SanitizeForLog(output))
		return false
	}
	return true
}
