/*
Package utils contains decorators shared by all extensions: recovering from
panics, logging, isolating every transaction in a savepoint, tagging the
results and collecting metrics.
*/
package utils
