// Package useragent turns a User-Agent header into the fields stored in
// login snapshots.
package useragent

import (
	"strings"

	"github.com/dalemusser/eventhub/internal/domain/models"
	"github.com/mssola/user_agent"
)

// Device types.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// Parse extracts browser, OS, platform and device type from raw.
func Parse(raw string) models.ParsedUserAgent {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.ParsedUserAgent{DeviceType: DeviceUnknown}
	}

	ua := user_agent.New(raw)
	name, version := ua.Browser()

	device := DeviceDesktop
	switch {
	case ua.Bot():
		device = DeviceBot
	case ua.Mobile():
		device = DeviceMobile
	}

	return models.ParsedUserAgent{
		Browser:        name,
		BrowserVersion: version,
		OS:             ua.OS(),
		Platform:       ua.Platform(),
		DeviceType:     device,
	}
}
