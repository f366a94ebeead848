// Package config loads the lolopal configuration.
//
// Configuration is a single YAML file merged over built-in defaults. The git
// push credential is never stored in the file; it is read from the
// LOLOPAL_GIT_TOKEN or GITHUB_TOKEN environment variables, in that order.
package config
