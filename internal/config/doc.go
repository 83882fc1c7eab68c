// Package config defines the alarm clock settings shared by alarm-clock and
// alarm-ctl, and provides helpers to load, validate and save them as YAML.
package config
