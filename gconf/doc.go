/*
Package gconf provides a toolset for managing an extension configuration.

Each extension keeps a single configuration object, stored under the
"_c:<extension>" key. The initial value is set from the "conf" section of the
genesis file and can later be changed by the configuration owner through an
update message carrying a "Patch" field.
*/
package gconf
