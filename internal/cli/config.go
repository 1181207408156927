package cli

// Config holds the configuration for one compiler run
type Config struct {
	// Paths are directories to scan, or package patterns when Packages is set.
	// Directory paths accept the ./... suffix.
	Paths []string

	// Packages loads Paths through the go command instead of walking directories
	Packages bool

	// PolicyFile is an optional YAML policy; empty means the defaults
	PolicyFile string

	// Targets are router dialects to probe, overriding the policy file
	Targets []string

	// Format is the routing table encoding, json or yaml
	Format string

	// Output is the file the routing table is written to; empty means stdout
	Output string

	// Verbose enables detailed logging and error reporting
	Verbose bool
}
