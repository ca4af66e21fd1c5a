// Package config defines configuration for the cocoload CLI.
//
// Configuration is layered: Default() < YAML file < .env file <
// COCOLOAD_* environment variables < command-line flags (merged by the
// caller via Merge). The archive manifest defaults to the eight COCO 2017
// archives and can be replaced wholesale from YAML.
package config
