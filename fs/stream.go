package fs

import "io"

// Stream is an unowned descriptor such as stdout. Writes have write-all
// semantics; closing is the host's business.
type Stream struct {
	fs *FS
	fd int32
}

var _ io.ReadWriter = (*Stream)(nil)

// Fd returns the descriptor.
func (s *Stream) Fd() int32 {
	return s.fd
}

func (s *Stream) Write(p []byte) (int, error) {
	return writeAll(s.fs, "write", "", s.fd, p, noCheck)
}

// WriteString writes str.
func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

func (s *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := s.fs.host.Read(s.fd, p)
	if n < 0 {
		return 0, s.fs.fail("read", "")
	}
	if n == 0 {
		return 0, io.EOF
	}
	return int(n), nil
}

func noCheck(string) error { return nil }
