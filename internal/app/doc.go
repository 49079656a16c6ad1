// Package app wires application dependencies for the CLI.
//
// It loads Config through viper, sets up logging, and builds the repository,
// services, transport and metrics that commands use through App.
package app
