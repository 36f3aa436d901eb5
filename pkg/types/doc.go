// Package types defines the value model of the configuration store: the
// closed Value union and its type tags, the ordered Object mapping, the
// Backend persistence contract, store configuration, and the standard errors
// shared by every layer.
package types
