// Package config defines the configuration for a meshkv node.
//
// Regardless of how meshkv is started, directly from Go code or as a
// standalone process from the command line, it uses the Config object defined
// in this package to store and forward configuration options. On top of these
// configuration options, meshkv relies on a data directory, defined by
// Config.DataDir, where it looks for a few optional files:
//
//  meshkv.toml // (or .yaml, .json) configuration file read by the CLI.
//  peers.json // a JSON array of host:port strings appended to the initial peers.
package config
