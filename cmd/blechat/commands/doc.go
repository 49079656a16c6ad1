// Package commands defines the blechat CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init      Create (or restore with --mnemonic) the primary identity
//   - whoami    Print the primary alias and fingerprint
//   - backup    Print the recovery phrase of the primary identity
//   - announce  Encode (and with --publish, broadcast) an identity announcement
//   - post      Encode (and with --publish, broadcast) a public message
//   - ingest    Store a received identity or message packet given as hex
//   - peers     List known peers
//   - messages  List stored messages, newest first
//   - purge     Delete peers and messages by id
//   - listen    Join the MQTT broadcast channel and ingest until interrupted
//
// # Implementation
//
// The root command loads configuration through viper (file, BLECHAT_
// environment variables and flags) and builds the dependency graph before
// any subcommand runs. Subcommands share it through appCtx.
package commands
