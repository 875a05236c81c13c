package asyncio

import (
	"errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/utkarsh5026/taskbench/suspend"
)

// FileChannel is a read-only file whose positional reads run on a pool.
type FileChannel struct {
	pool   Executor
	file   *os.File
	closed atomic.Bool
}

// OpenFile opens path read-only. Reads are executed on pool.
func OpenFile(pool Executor, path string) (*FileChannel, error) {
	f, err := os.Open(path) // #nosec G304 -- path is chosen by the operator
	if err != nil {
		return nil, err
	}
	return &FileChannel{pool: pool, file: f}, nil
}

// Read reads up to len(buf) bytes at off and reports the byte count to h.
// Reaching the end of the file is not an error; a read starting at or past
// the end reports 0.
func (fc *FileChannel) Read(buf []byte, off int64, h suspend.CompletionHandler[int]) {
	if fc.closed.Load() {
		h.Failed(ErrChannelClosed)
		return
	}

	deliver(fc.pool, func() {
		n, err := fc.file.ReadAt(buf, off)
		if err != nil && !errors.Is(err, io.EOF) {
			h.Failed(err)
			return
		}
		h.Completed(n)
	}, h.Failed)
}

// Name returns the path the channel was opened with.
func (fc *FileChannel) Name() string {
	return fc.file.Name()
}

// Close closes the file. Later calls are no-ops.
func (fc *FileChannel) Close() error {
	if !fc.closed.CompareAndSwap(false, true) {
		return nil
	}
	return fc.file.Close()
}

var (
	_ suspend.FileChannel   = (*FileChannel)(nil)
	_ suspend.SocketChannel = (*SocketChannel)(nil)
)
