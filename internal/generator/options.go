package generator

import "runtime"

// DefaultUser owns non-shared schemes when no user is configured.
const DefaultUser = "xcbuddy"

// Options tunes a generation run.
type Options struct {
	// Parallelism bounds how many projects are rendered at once. Zero means
	// one per CPU.
	Parallelism int
	// User names the xcuserdata directory non-shared schemes are written to.
	User string
}

func (o Options) withDefaults() Options {
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.NumCPU()
	}
	if o.User == "" {
		o.User = DefaultUser
	}
	return o
}
