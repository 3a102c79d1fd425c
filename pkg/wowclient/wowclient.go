// Package wowclient provides a small public surface for reusing this
// repository as a library. The implementation lives in internal/ and
// client/ and may change without notice.
package wowclient

import (
	"context"

	"github.com/mangosgo/wowcore/client"
	"github.com/mangosgo/wowcore/internal/config"
	"github.com/mangosgo/wowcore/internal/headercipher"
	"github.com/mangosgo/wowcore/internal/opcode"
	"github.com/mangosgo/wowcore/internal/router"
	"github.com/mangosgo/wowcore/internal/telemetry"
)

// --- Config ---

type SessionConfig = config.SessionConfig

// LoadConfig loads YAML configuration file.
func LoadConfig(path string) (*SessionConfig, error) { return config.LoadConfig(path) }

// --- Core runtime ---

type WorldClient = client.WorldClient

type Options = client.Options

// Connect dials addr and wires the full connection pipeline.
func Connect(ctx context.Context, addr string, opts Options) (*WorldClient, error) {
	return client.Connect(ctx, addr, opts)
}

// --- Opcodes ---

type Opcode = opcode.Opcode

// --- Router ---

type Subscription = router.Subscription

// --- Telemetry ---

// StartTelemetryServer serves /metrics on addr until context cancellation.
func StartTelemetryServer(ctx context.Context, addr string) error {
	return telemetry.StartServer(ctx, addr)
}

// --- Header cipher session key size ---

const SessionKeySize = headercipher.KeySize
