// Package constants provides application-wide constant values for linklock.
//
// It centralizes the demonstration defaults (lock path, content path,
// iteration count, acquire timeout), the environment variable prefix, and the
// logo shown by the version command.
//
// # Usage
//
//	import "github.com/bashhack/linklock/internal/constants"
//
//	func displayLogo() {
//	    fmt.Println(constants.Logo)
//	    fmt.Println(constants.Tagline)
//	}
//
// # Maintenance
//
// When adding new constants to this package:
//
// - Group related constants together
// - Provide clear documentation for each constant
// - Consider the scope and usage across the application
package constants
