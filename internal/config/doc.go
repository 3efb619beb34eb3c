// Package config holds the settings of a catalog crawl and the loaders that
// fill them from a .env file, a YAML configuration file and CLI flags.
package config
