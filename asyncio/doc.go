// Package asyncio provides callback-based I/O primitives: a socket that
// connects asynchronously, a file that reads asynchronously at an offset,
// and an HTTP client whose completions are delivered on an executor.
//
// Every primitive reports its outcome exactly once through a
// suspend.CompletionHandler or a types.Future. The callbacks run on the
// executor the primitive was built with, never on the caller's goroutine.
package asyncio

import "github.com/utkarsh5026/taskbench/dispatch"

// Executor runs completion callbacks. *dispatch.Executor satisfies it.
type Executor interface {
	Submit(job dispatch.Job) error
}
