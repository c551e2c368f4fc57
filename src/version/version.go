package version

// Version is the CLI version string printed by the version command.
const Version = "0.1.0"
