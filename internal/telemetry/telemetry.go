package telemetry

import (
	"log"
	"os"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"
)

// Tracker sends anonymous usage events to PostHog.
// A Tracker without an API key drops every event.
type Tracker struct {
	client     posthog.Client
	distinctID string
	version    string
}

// New creates a tracker. An empty key disables tracking.
func New(key, host, version string) *Tracker {
	t := &Tracker{version: version}
	if key == "" {
		return t
	}

	client, err := posthog.NewWithConfig(key, posthog.Config{Endpoint: host})
	if err != nil {
		log.Printf("[Telemetry] Failed to initialize PostHog: %v", err)
		return t
	}
	t.client = client
	t.distinctID = installID()
	return t
}

// Enabled reports whether events are delivered
func (t *Tracker) Enabled() bool {
	return t != nil && t.client != nil
}

// Track enqueues an event with the common properties attached
func (t *Tracker) Track(event string, props map[string]interface{}) {
	if !t.Enabled() {
		return
	}
	properties := posthog.NewProperties().
		Set("version", t.version).
		Set("os", goruntime.GOOS).
		Set("arch", goruntime.GOARCH)
	for k, v := range props {
		properties.Set(k, v)
	}
	if err := t.client.Enqueue(posthog.Capture{
		DistinctId: t.distinctID,
		Event:      event,
		Properties: properties,
	}); err != nil {
		log.Printf("[Telemetry] Failed to enqueue %s: %v", event, err)
	}
}

// Close flushes pending events
func (t *Tracker) Close() {
	if t.Enabled() {
		t.client.Close()
	}
}

// installID returns a per-install random identifier, persisted under the
// user config directory when possible.
func installID() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return uuid.NewString()
	}
	path := filepath.Join(dir, "tilelapse", "install_id")
	if data, err := os.ReadFile(path); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(string(data))); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
		_ = os.WriteFile(path, []byte(id+"\n"), 0644)
	}
	return id
}
