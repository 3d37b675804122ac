/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension stores a single configuration record under the "_c:<package>"
key. The record is loaded from the genesis file ("conf" section) during chain
initialization and read by handlers on demand. Configuration is validated
before it is written, so a successful Load always returns a valid record.
*/
package gconf
