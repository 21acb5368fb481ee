// Package config loads the keymap profile that configures the remap
// engine. Grounded on internal/config/config.go (bnema-waymon): the same
// viper-over-TOML loading shape, search paths, and SetDefault seeding, but
// unmarshaling into remap.Profile instead of waymon's server/client/display
// structs — uberkb has no network or display config to carry.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/alexveden/uberkb-sub001/internal/remap"
)

// DefaultProfile seeds viper's defaults: mouse-by-keyboard and the modifier
// overlay are both off by default (mod_key_code/mouse_key_code = 0), so an
// unconfigured run is pure passthrough — concrete presets stay out of scope
// per spec.md §1, this only fixes the shape's safe defaults.
var DefaultProfile = remap.Profile{
	DirectMap:        map[uint16]uint16{},
	ModMap:           map[uint16]uint16{},
	MouseMap:         map[uint16]uint16{},
	ModKeyCode:       0,
	MouseKeyCode:     0,
	MouseSensitivity: 1.0,
	MouseSpeedupMs:   400,
	Debug:            false,
}

// Init loads keymap.toml from /etc/uberkb, ~/.config/uberkb (or the sudo
// invoker's home), and the current directory, in that precedence order,
// falling back to DefaultProfile when no file is found.
func Init() (*remap.Profile, error) {
	viper.SetConfigName("keymap")
	viper.SetConfigType("toml")

	viper.AddConfigPath("/etc/uberkb")

	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		viper.AddConfigPath(filepath.Join("/home", sudoUser, ".config", "uberkb"))
	} else if home := os.Getenv("HOME"); home != "" && home != "/root" {
		viper.AddConfigPath(filepath.Join(home, ".config", "uberkb"))
	}

	viper.AddConfigPath(".")

	viper.SetDefault("direct_map", DefaultProfile.DirectMap)
	viper.SetDefault("mod_map", DefaultProfile.ModMap)
	viper.SetDefault("mouse_map", DefaultProfile.MouseMap)
	viper.SetDefault("mod_key_code", DefaultProfile.ModKeyCode)
	viper.SetDefault("mouse_key_code", DefaultProfile.MouseKeyCode)
	viper.SetDefault("mouse_sensitivity", DefaultProfile.MouseSensitivity)
	viper.SetDefault("mouse_speedup_ms", DefaultProfile.MouseSpeedupMs)
	viper.SetDefault("debug", DefaultProfile.Debug)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading keymap config: %w", err)
		}
	}

	profile := &remap.Profile{}
	if err := viper.Unmarshal(profile); err != nil {
		return nil, fmt.Errorf("unable to unmarshal keymap config: %w", err)
	}

	return profile, nil
}

// GetConfigPath reports which keymap.toml viper loaded, or the path it
// would write to for the current user, mirroring config.GetConfigPath's
// precedence rules (bnema-waymon) without the Save/AddHost machinery that
// existed for the network mouse-sharing surface.
func GetConfigPath() string {
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	if os.Getuid() == 0 || os.Getenv("SUDO_USER") != "" {
		return "/etc/uberkb/keymap.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/uberkb/keymap.toml"
	}
	return filepath.Join(home, ".config", "uberkb", "keymap.toml")
}
