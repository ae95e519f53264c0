// Package manifest defines the format-agnostic manifest model for the
// application: the structured Document produced by an interpreter, the typed
// domain objects (Project, Target, Workspace, Scheme, Config) decoded from it,
// and the error kinds every loading stage reports.
//
// Concrete manifest syntaxes, such as HCL, live in separate packages and only
// need to produce a Document. Everything downstream (loader, graph resolver,
// generator, dump) works exclusively with the types defined here.
package manifest
