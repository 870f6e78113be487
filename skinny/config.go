package skinny

/*------------------------------------------------------------------
 *
 * Purpose:	Immutable phone configuration, derived once by NewSession
 *		and never mutated afterward (spec.md §3 PhoneConfig).
 *
 *-----------------------------------------------------------------*/

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
)

// Model is the CUCM device-type enum carried in RegisterReq.
type Model int

const (
	ModelGeneric Model = 30002 // "Third-party SIP/SCCP Device (Basic)" style placeholder id.
	Model7960                Model = 7
	Model7940                Model = 8
	Model7970                Model = 47
)

// AudioPlayMode selects what the RTP sender reads from for StartMediaTransmission.
type AudioPlayMode string

const (
	PlayModeSilent     AudioPlayMode = "silent"
	PlayModeMicrophone AudioPlayMode = "microphone"
	// Anything else is treated as a path to a wav file to loop.
)

// Config carries every recognized configuration key from spec.md §6.
// Configuration *file* parsing is explicitly out of scope (SPEC_FULL.md
// Non-goals) -- callers populate this struct directly or via flags.
type Config struct {
	Server string
	Port   int // default 2000
	MAC    string
	Model  Model

	AutoConnect bool
	AutoAnswer  bool

	ToneVolumeDB float64 // default 5.0

	AudioPlayMode AudioPlayMode

	EnableCDP bool
	EnableLLDP bool
	EnableLSP bool

	DiscoverCUCM    bool
	DiscoverTimeout time.Duration

	GPIOChip       string
	GPIOLampLine   int
	GPIORingerLine int

	LineCount int // number of directory lines to register.
}

// DefaultConfig returns a Config with every documented default applied.
func DefaultConfig() Config {
	return Config{
		Port:            2000,
		Model:           ModelGeneric,
		AutoConnect:     true,
		AutoAnswer:      false,
		ToneVolumeDB:    5.0,
		AudioPlayMode:   PlayModeSilent,
		DiscoverTimeout: 3 * time.Second,
		LineCount:       1,
	}
}

var macHexRE = regexp.MustCompile(`^[0-9A-Fa-f]{12}$`)

// NormalizeMAC strips common separators and upper-cases a MAC address,
// returning an error if the result isn't 12 hex digits.
func NormalizeMAC(mac string) (string, error) {
	var cleaned = strings.ToUpper(strings.NewReplacer(":", "", "-", "", ".", "", " ", "").Replace(mac))
	if !macHexRE.MatchString(cleaned) {
		return "", fmt.Errorf("skinny: invalid MAC address %q", mac)
	}
	return cleaned, nil
}

// DeviceName returns the SEP<MAC> device name CUCM expects.
func DeviceName(mac string) string {
	return "SEP" + mac
}

// PhoneConfig is the normalized, immutable configuration derived from
// Config at Session construction time.
type PhoneConfig struct {
	Server       string
	Port         int
	MAC          string
	DeviceName   string
	Model        Model
	LineCount    int
	LocalIP      net.IP
	ToneVolumeDB float64
	AudioPlayMode AudioPlayMode
}

// NewPhoneConfig validates and normalizes cfg, discovering the local
// client IP by opening a UDP "connection" toward the server (no packets
// are sent; this just makes the OS pick a route and a local address).
func NewPhoneConfig(cfg Config) (PhoneConfig, error) {
	if cfg.Server == "" {
		return PhoneConfig{}, fmt.Errorf("skinny: server is required")
	}

	var mac, macErr = NormalizeMAC(cfg.MAC)
	if macErr != nil {
		return PhoneConfig{}, macErr
	}

	var port = cfg.Port
	if port == 0 {
		port = 2000
	}

	var localIP, ipErr = discoverLocalIP(cfg.Server, port)
	if ipErr != nil {
		return PhoneConfig{}, fmt.Errorf("skinny: discovering local address: %w", ipErr)
	}

	var lineCount = cfg.LineCount
	if lineCount <= 0 {
		lineCount = 1
	}

	var toneVolumeDB = cfg.ToneVolumeDB
	if toneVolumeDB == 0 {
		toneVolumeDB = 5.0
	}

	return PhoneConfig{
		Server:        cfg.Server,
		Port:          port,
		MAC:           mac,
		DeviceName:    DeviceName(mac),
		Model:         cfg.Model,
		LineCount:     lineCount,
		LocalIP:       localIP,
		ToneVolumeDB:  toneVolumeDB,
		AudioPlayMode: cfg.AudioPlayMode,
	}, nil
}

func discoverLocalIP(server string, port int) (net.IP, error) {
	var conn, err = net.Dial("udp", net.JoinHostPort(server, fmt.Sprintf("%d", port)))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var addr, ok = conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return nil, fmt.Errorf("unexpected local address type %T", conn.LocalAddr())
	}

	return addr.IP, nil
}
