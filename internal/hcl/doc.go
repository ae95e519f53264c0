// Package hcl provides the concrete HCL implementation of the
// manifest.Interpreter interface. It is responsible for parsing manifest
// source, evaluating every expression inside a sandboxed evaluation context
// and translating the result into the format-agnostic manifest.Document.
//
// The sandbox exposes pure functions from the cty standard library and the
// `local` namespace only. Functions that would reach the filesystem or the
// environment (file, templatefile, env) are deliberately absent, so manifest
// logic can describe a project but never inspect the machine it runs on.
package hcl
