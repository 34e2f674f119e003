// Package config provides configuration structures and utilities for linkcheck.
// It defines the options for discovering documents, classifying references,
// probing external links and rendering reports, and loads the optional
// .linkcheck YAML file.
package config
