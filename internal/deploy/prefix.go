package deploy

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter prefixes every complete line written to it, blank lines
// included. Writers sharing
// the same mutex never interleave within a line.
type PrefixWriter struct {
	w      io.Writer
	prefix []byte
	mu     *sync.Mutex
	buf    []byte
}

// NewPrefixWriter returns a writer that prefixes lines with prefix. mu guards
// w and may be shared between writers; nil allocates a private one.
func NewPrefixWriter(w io.Writer, prefix string, mu *sync.Mutex) *PrefixWriter {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &PrefixWriter{w: w, prefix: []byte(prefix), mu: mu}
}

func (p *PrefixWriter) Write(b []byte) (int, error) {
	p.buf = append(p.buf, b...)
	for {
		i := bytes.IndexByte(p.buf, '\n')
		if i < 0 {
			break
		}
		if err := p.emit(p.buf[:i]); err != nil {
			return len(b), err
		}
		p.buf = p.buf[i+1:]
	}
	return len(b), nil
}

// Flush writes a pending partial line, terminated with a newline.
func (p *PrefixWriter) Flush() error {
	if len(p.buf) == 0 {
		return nil
	}
	err := p.emit(p.buf)
	p.buf = nil
	return err
}

func (p *PrefixWriter) emit(line []byte) error {
	out := make([]byte, 0, len(p.prefix)+len(line)+1)
	out = append(out, p.prefix...)
	out = append(out, line...)
	out = append(out, '\n')

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.w.Write(out)
	return err
}
