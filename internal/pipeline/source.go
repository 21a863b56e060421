package pipeline

import (
	"fmt"
	"io"
	"os"
)

// Source is where search reads samples from. A finite source is read whole in
// one cycle; an unbounded one is consumed in one-second chunks until EOF.
type Source struct {
	Name   string
	Reader io.Reader
	Size   int64
	Finite bool
}

// FiniteSource wraps a reader of known byte length.
func FiniteSource(name string, r io.Reader, size int64) Source {
	return Source{Name: name, Reader: r, Size: size, Finite: true}
}

// StreamSource wraps a reader of unknown length.
func StreamSource(name string, r io.Reader) Source {
	return Source{Name: name, Reader: r}
}

// OpenSource opens path as a finite source, or wraps stdin as a stream when
// path is empty. The returned close func is always safe to call.
func OpenSource(path string, stdin io.Reader) (Source, func() error, error) {
	if path == "" {
		return StreamSource("stdin", stdin), func() error { return nil }, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Source{}, nil, ioError(fmt.Errorf("could not open %s for reading: %w", path, err))
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return Source{}, nil, ioError(fmt.Errorf("stat %s: %w", path, err))
	}
	return FiniteSource(path, f, info.Size()), f.Close, nil
}

// OpenSink returns a writer for path, or stdout when path is empty. The file
// is created on the first Write, so a request that fails before producing
// output leaves nothing behind. The returned close func is always safe to call.
func OpenSink(path string, stdout io.Writer) (io.Writer, func() error) {
	if path == "" {
		return stdout, func() error { return nil }
	}
	sink := &fileSink{path: path}
	return sink, sink.Close
}

type fileSink struct {
	path string
	f    *os.File
}

func (s *fileSink) Write(p []byte) (int, error) {
	if s.f == nil {
		f, err := os.Create(s.path)
		if err != nil {
			return 0, fmt.Errorf("could not open %s for writing: %w", s.path, err)
		}
		s.f = f
	}
	return s.f.Write(p)
}

func (s *fileSink) Close() error {
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}
