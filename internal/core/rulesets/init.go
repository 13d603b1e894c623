// Package rulesets registers the built-in rule sets with the core registry.
// Import this package to ensure they are registered.
package rulesets

// This file exists to provide a single import point.
// Each rule set file uses init() to register itself.
