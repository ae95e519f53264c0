package manifest

import "context"

// Interpreter evaluates the source of a single manifest file into a
// Document. Implementations must not give manifest logic access to the
// filesystem, the network or the environment: the caller supplies the
// source bytes.
type Interpreter interface {
	Interpret(ctx context.Context, path string, src []byte) (*Document, error)
}
