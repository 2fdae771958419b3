package actions

import (
	"github.com/rs/zerolog"

	"dirdigest/internal/mirror"
)

// Logging logs every action before handing it to the wrapped Actions.
type Logging struct {
	next mirror.Actions
	log  zerolog.Logger
}

var (
	_ mirror.Actions = (*Logging)(nil)
	_ mirror.Exister = (*Logging)(nil)
)

func NewLogging(next mirror.Actions, log zerolog.Logger) *Logging {
	return &Logging{next: next, log: log}
}

func (l *Logging) CreateDirectory(path string) error {
	l.log.Info().Str("op", string(mirror.OpCreateDirectory)).Str("path", path).Msg("creating directory")
	return l.done(mirror.OpCreateDirectory, path, l.next.CreateDirectory(path))
}

func (l *Logging) CopyFile(source, destination string) error {
	l.log.Info().Str("op", string(mirror.OpCopyFile)).Str("source", source).Str("path", destination).Msg("copying file")
	return l.done(mirror.OpCopyFile, destination, l.next.CopyFile(source, destination))
}

func (l *Logging) DeleteFile(path string) error {
	l.log.Info().Str("op", string(mirror.OpDeleteFile)).Str("path", path).Msg("deleting file")
	return l.done(mirror.OpDeleteFile, path, l.next.DeleteFile(path))
}

func (l *Logging) Exists(path string) (bool, error) {
	return mirror.DirectoryExists(l.next, path)
}

func (l *Logging) done(op mirror.Op, path string, err error) error {
	if err != nil {
		l.log.Error().Err(err).Str("op", string(op)).Str("path", path).Msg("action failed")
	}
	return err
}
