package workload

import (
	"context"
	"errors"

	"github.com/utkarsh5026/taskbench/asyncio"
	"github.com/utkarsh5026/taskbench/sink"
	"github.com/utkarsh5026/taskbench/suspend"
)

// DefaultBufferSize is the per-task read buffer size.
const DefaultBufferSize = 250000

// FileRead opens one file per task and reads its head into the task's
// own buffer.
type FileRead struct {
	Path       string
	BufferSize int
	Pool       asyncio.Executor
	Sink       *sink.Blackhole
}

// NewFileRead builds a file workload; a non-positive size uses
// DefaultBufferSize.
func NewFileRead(path string, size int, pool asyncio.Executor, bh *sink.Blackhole) *FileRead {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &FileRead{Path: path, BufferSize: size, Pool: pool, Sink: bh}
}

func (f *FileRead) Kind() Kind   { return KindFileRead }
func (f *FileRead) Name() string { return "file" }

// Prepare allocates the task's buffer. The unit opens the file, reads from
// offset 0, consumes the bytes read and closes the file on every path.
func (f *FileRead) Prepare(int) Unit {
	buf := make([]byte, f.BufferSize)

	return func(ctx context.Context) (err error) {
		fc, err := asyncio.OpenFile(f.Pool, f.Path)
		if err != nil {
			return wrap(f.Name(), err)
		}
		defer func() {
			if cerr := fc.Close(); cerr != nil {
				err = errors.Join(err, wrap(f.Name(), cerr))
			}
		}()

		data, err := suspend.Read(ctx, fc, buf)
		if err != nil {
			return wrap(f.Name(), err)
		}
		f.Sink.ConsumeBytes(data)
		return nil
	}
}
