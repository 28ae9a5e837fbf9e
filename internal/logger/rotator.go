package logger

import (
	"fmt"
	"os"
	"sync"
)

// Rotator is an io.Writer that rotates the underlying file once it exceeds
// MaxSize bytes, keeping up to MaxBackups numbered backups.
type Rotator struct {
	Filename   string
	MaxSize    int64 // bytes
	MaxBackups int

	mu   sync.Mutex
	file *os.File
	size int64
}

func (r *Rotator) openExistingOrNew() error {
	info, err := os.Stat(r.Filename)
	if os.IsNotExist(err) {
		return r.openNew()
	}
	if err != nil {
		return err
	}

	f, err := os.OpenFile(r.Filename, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	r.file = f
	r.size = info.Size()
	return nil
}

func (r *Rotator) openNew() error {
	f, err := os.OpenFile(r.Filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	r.file = f
	r.size = 0
	return nil
}

// Write satisfies io.Writer. It rotates first when the write would push the
// file past MaxSize. A failed rotation is reported to stderr and the write
// proceeds on the current file rather than dropping the entry.
func (r *Rotator) Write(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err = r.openExistingOrNew(); err != nil {
			return 0, err
		}
	}

	if r.size+int64(len(p)) > r.MaxSize {
		if err := r.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "Log rotation failed: %v\n", err)
		}
	}

	n, err = r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// rotate shifts backups up one slot (log.1 -> log.2, ...) and starts a
// fresh file. The oldest backup beyond MaxBackups is overwritten.
func (r *Rotator) rotate() error {
	if r.file != nil {
		r.file.Close()
	}

	for i := r.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.Filename, i)
		if _, err := os.Stat(oldPath); os.IsNotExist(err) {
			continue
		}
		os.Rename(oldPath, fmt.Sprintf("%s.%d", r.Filename, i+1))
	}

	if _, err := os.Stat(r.Filename); err == nil {
		os.Rename(r.Filename, fmt.Sprintf("%s.1", r.Filename))
	}

	return r.openNew()
}
