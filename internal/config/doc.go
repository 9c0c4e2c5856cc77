// Package config defines the format-agnostic configuration model of the
// service, along with the Loader interface for reading it from files.
//
// The Model is the single source of truth for wiring in the app package.
// Concrete loaders, such as the HCL one, live in separate packages and only
// have to fill in the fields they find; Default supplies everything else.
package config
