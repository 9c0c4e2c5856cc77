// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the server lifecycle, decoupled from any
// specific entrypoint like a CLI.
//
// NewApp turns a loaded config.Model into live components: the upstream
// client, the cache backends, the patch link and the surface endpoint. Run
// serves them until its context is cancelled.
package app
