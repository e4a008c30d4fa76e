// Package config handles loading and parsing the ClubDesk configuration file.
//
// # Overview
//
// The config file tells ClubDesk where the club-management API lives, which
// resource collection it edits and where to write its log. Every field is
// optional.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/clubdesk/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing or empty, use defaults
//
// # Default Values
//
//   - Config file: ~/.config/clubdesk/config.toml
//   - API base: 127.0.0.1:8080
//   - Resource: states (label "State")
//   - Request timeout: 10 seconds
//   - Log file: ~/.local/state/clubdesk/clubdesk.log
//
// # TOML Format
//
//	api_base = "https://club.example.org"
//	resource = "states"
//	resource_label = "State"
//	request_timeout_seconds = 10
//	log_file = "~/.local/state/clubdesk/clubdesk.log"
//
// Setting resource without resource_label leaves the label empty so the form
// derives one from the collection name.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, and TOML parsing errors ("parse config: ..."). A missing
// file is not an error.
package config
