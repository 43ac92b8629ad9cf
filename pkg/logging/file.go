package logging

import (
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions configures the rotating log file
type FileOptions struct {
	Path       string // logs/app.log when empty
	MaxSizeMB  int    // rotate after this many megabytes
	MaxBackups int    // rotated files kept
}

// DefaultFileOptions rotates logs/app.log at 5 MB keeping 5 backups
func DefaultFileOptions() FileOptions {
	return FileOptions{
		Path:       "logs/app.log",
		MaxSizeMB:  5,
		MaxBackups: 5,
	}
}

// RotatingFile returns a size-rotated log file. The directory is created on first write.
func RotatingFile(opts FileOptions) *lumberjack.Logger {
	def := DefaultFileOptions()
	if opts.Path == "" {
		opts.Path = def.Path
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = def.MaxSizeMB
	}
	if opts.MaxBackups < 0 {
		opts.MaxBackups = def.MaxBackups
	}
	return &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
}

// Tee writes to the console and to the rotating file. The returned closer
// releases the file.
func Tee(opts FileOptions) (io.Writer, io.Closer) {
	f := RotatingFile(opts)
	return io.MultiWriter(os.Stdout, f), f
}
