// Package app contains the core application logic. It wires the manifest
// loader, graph resolver and generator together behind one App per command
// invocation, decoupled from any specific entrypoint like a CLI.
package app
