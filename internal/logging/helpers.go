package logging

import (
	"errors"
	"log/slog"
	"net"
	"time"

	wifi "github.com/metageek-llc/ManagedWifi"
)

// Common field helpers for consistent structured logging

// BSSID creates the BSS identifier field
func BSSID(addr net.HardwareAddr) slog.Attr {
	return slog.String("bssid", addr.String())
}

// SSID creates the network name field
func SSID(ssid string) slog.Attr {
	return slog.String("ssid", ssid)
}

// Source creates the frame source field
func Source(name string) slog.Attr {
	return slog.String("source", name)
}

// Interface creates network interface fields
func Interface(ifi *wifi.Interface) []any {
	return []any{
		slog.String("interface", ifi.Name),
		slog.Int("ifindex", ifi.Index),
	}
}

// File creates file path field
func File(path string) slog.Attr {
	return slog.String("file", path)
}

// Kind creates the decode error kind field
func Kind(kind string) slog.Attr {
	return slog.String("kind", kind)
}

// Duration logs duration in milliseconds
func Duration(name string, d time.Duration) slog.Attr {
	return slog.Int64(name+"_ms", d.Milliseconds())
}

// Count creates count field
func Count(name string, count int) slog.Attr {
	return slog.Int(name+"_count", count)
}

// Err creates error field
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// ErrKind classifies a decode error for log and metric labels.
func ErrKind(err error) string {
	switch {
	case errors.Is(err, wifi.ErrTruncatedElement):
		return "truncated"
	case errors.Is(err, wifi.ErrUnknownEnumValue):
		return "unknown_enum"
	default:
		return "other"
	}
}
