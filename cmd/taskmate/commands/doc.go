// Package commands defines the taskmate CLI and wires dependencies for subcommands.
//
// Commands
//
//   - register       Create an account and sign in
//   - login          Sign in with email and password
//   - logout         Forget the signed-in user
//   - tasks          List, show, add, edit, complete and delete tasks
//   - profile        Show, update or delete the account
//   - theme          Show or toggle the light/dark palette
//   - tui            Run the interactive terminal client
//   - serve          Serve the terminal client over SSH
//
// # Implementation
//
// The root command loads configuration, opens storage and builds the API
// client and session before any subcommand runs. Missing required input is
// prompted for interactively with the same validators the forms use.
package commands
