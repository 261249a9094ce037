package constants

import "time"

// Defaults for the reader/writer exercise, matching the paths the lock has
// always been demonstrated with.
const (
	DefaultLockPath    = "/tmp/content.lock"
	DefaultContentPath = "/tmp/content.json"
	DefaultCount       = 10
	DefaultTimeout     = 60 * time.Second
)

// EnvPrefix is prepended to every environment variable the commands read.
const EnvPrefix = "LINKLOCK_"

// Logo is printed by the version command.
const Logo = ` _ _       _    _            _
| (_)_ __ | | _| | ___   ___| | __
| | | '_ \| |/ / |/ _ \ / __| |/ /
| | | | | |   <| | (_) | (__|   <
|_|_|_| |_|_|\_\_|\___/ \___|_|\_\`

// Tagline is printed under the logo.
const Tagline = "One holder at a time, no daemon required."
