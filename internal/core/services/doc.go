// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Each service takes its collaborators and a config struct in the
// constructor; zero config values fall back to the package defaults.
package services
