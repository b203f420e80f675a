// Package config loads and validates the kubestrap configuration file.
//
// The file is YAML, decoded through mapstructure so that field names in
// the file stay snake_case while the Go structs stay idiomatic. Defaults
// are applied after decoding and before validation, so a minimal file
// with just cluster_name and machine_id is enough for a local
// control-plane run.
package config
