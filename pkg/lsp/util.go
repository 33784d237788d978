package lsp

import (
	"bufio"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// ReadWriteCloser joins the two halves of a stdio transport. Every write is
// flushed so a framed message is never left sitting in the buffer.
type ReadWriteCloser struct {
	reader  *bufio.Reader
	writer  *bufio.Writer
	closers []io.Closer

	wmu sync.Mutex
}

func NewReadWriteCloser(r io.ReadCloser, w io.WriteCloser) *ReadWriteCloser {
	return &ReadWriteCloser{
		reader:  bufio.NewReader(r),
		writer:  bufio.NewWriter(w),
		closers: []io.Closer{r, w},
	}
}

func (rwc *ReadWriteCloser) Read(p []byte) (int, error) {
	return rwc.reader.Read(p)
}

func (rwc *ReadWriteCloser) Write(p []byte) (int, error) {
	rwc.wmu.Lock()
	defer rwc.wmu.Unlock()

	n, err := rwc.writer.Write(p)
	if err != nil {
		return n, err
	}
	return n, rwc.writer.Flush()
}

// Close closes both halves, reporting every failure.
func (rwc *ReadWriteCloser) Close() error {
	var merr *multierror.Error
	for _, c := range rwc.closers {
		if err := c.Close(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}
