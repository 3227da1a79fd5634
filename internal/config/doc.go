// Package config manages user-level settings stored at ~/.modgraph/config.yaml.
// Values can be overridden through MODGRAPH_* environment variables. Keys cover
// the mods root to index, the default localization module and the log level.
package config
