package orrery

import (
	"os"

	kitlog "github.com/go-kit/log"
)

// NewWorldLogger builds the default structured logger for a World, in the
// same logfmt-over-stdout style as the teacher package's SCLogInit.
func NewWorldLogger(name string) kitlog.Logger {
	logger := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	logger = kitlog.With(logger, "world", name, "ts", kitlog.DefaultTimestampUTC)
	return logger
}
