package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

type Settings struct {
	ListenAddr   string `envconfig:"LISTEN_ADDR" default:":5000"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"/opt/workspaces-api/workspaces-sessions/workspaces_sessions.db"`
	LogPath      string `envconfig:"LOG_PATH" default:""`

	// Domain is the base domain workspaces are exposed under; a container
	// named N is reachable at https://N.<Domain> via the external proxy.
	Domain        string `envconfig:"DOMAIN" default:"workspaces.domain.local"`
	Registry      string `envconfig:"REGISTRY" default:"gitea.domain.local:3002"`
	DockerHost    string `envconfig:"DOCKER_HOST" default:""`
	DockerNetwork string `envconfig:"DOCKER_NETWORK" default:"proxy"`

	DesktopUser string `envconfig:"DESKTOP_USER" default:"workspaces-user"`
	DesktopPort int    `envconfig:"DESKTOP_PORT" default:"6901"`

	// DefaultLeaseSeconds is the lease added when a caller extends without
	// an explicit amount. TTL 0 always means "never expires".
	DefaultLeaseSeconds int64  `envconfig:"DEFAULT_LEASE_SECONDS" default:"7200"`
	SweepSchedule       string `envconfig:"SWEEP_SCHEDULE" default:"@every 5m"`

	// Image catalog (Gitea package registry)
	CatalogURL           string `envconfig:"CATALOG_URL" default:"https://gitea.domain.local:3002"`
	CatalogOrg           string `envconfig:"CATALOG_ORG" default:"Hilsamlabs"`
	CatalogUsername      string `envconfig:"CATALOG_USERNAME" default:""`
	CatalogToken         string `envconfig:"CATALOG_TOKEN" default:""`
	CatalogSkipTLSVerify bool   `envconfig:"CATALOG_SKIP_TLS_VERIFY" default:"false"`
	FallbackCatalogPath  string `envconfig:"FALLBACK_CATALOG_PATH" default:""`
}

var Cfg Settings

func Load() {
	if err := envconfig.Process("WORKSPACES", &Cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
}
