// Package clipboard copies composed reports to the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
)

// Copier writes report text to the clipboard in the background. Clipboard failures never
// reach the caller; a missing clipboard (headless host, no xclip) only produces a debug log.
type Copier struct {
	logger *logrus.Logger
	write  func(string) error
}

// NewCopier returns a Copier backed by the system clipboard.
func NewCopier(logger *logrus.Logger) *Copier {
	return &Copier{logger: logger, write: clipboard.WriteAll}
}

// Supported reports whether a clipboard utility is available on this host.
func Supported() bool {
	return !clipboard.Unsupported
}

// Copy starts the copy and returns a channel that is closed once the attempt has finished.
func (c *Copier) Copy(text string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.write(text); err != nil {
			c.logger.WithError(err).Debug("Clipboard copy failed")
			return
		}
		c.logger.WithField("length", len(text)).Debug("Report copied to clipboard")
	}()
	return done
}
