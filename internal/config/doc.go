// Package config defines configuration structures for the dezoomify CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (DEZOOM_ prefix)
//   - YAML configuration file
//
// Precedence: defaults < file < environment < flags, applied through Merge.
package config
