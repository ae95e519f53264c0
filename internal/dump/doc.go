// Package dump renders decoded manifests in a canonical, key-sorted text
// form for inspection. The output is not meant to be read back.
package dump
