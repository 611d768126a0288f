// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package reactor

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Options configures a Server before Start is called.
type Options struct {
	// ListenAddress is the address the listener binds to. Default "0.0.0.0".
	ListenAddress string

	// WorkThreadCount is the number of worker goroutines invoking the user
	// handler. Zero resolves to 2x the number of logical CPUs at Start.
	WorkThreadCount int

	// ReadLimit caps the maximum accepted frame body length. Zero means no
	// limit beyond what the process can allocate.
	ReadLimit int

	// InitialBodyCapacity is the receive buffer's starting capacity, doubled
	// on demand per the buffer-growth discipline. Default 1024, matching the
	// original source's Request::RESERVED_SIZE.
	InitialBodyCapacity int

	// PollTimeout bounds each reactor wait so shutdown is observed promptly.
	// Default 300ms, matching the original source's epoll_wait timeout.
	PollTimeout time.Duration

	// Logger receives lifecycle and teardown diagnostics. Defaults to
	// logrus.StandardLogger().
	Logger *logrus.Logger
}

var defaultOptions = Options{
	ListenAddress:       "0.0.0.0",
	WorkThreadCount:     0,
	ReadLimit:           0,
	InitialBodyCapacity: 1024,
	PollTimeout:         300 * time.Millisecond,
	Logger:              logrus.StandardLogger(),
}

// Option configures Options.
type Option func(*Options)

// WithListenAddress sets the bind address. Equivalent to Server.SetListenAddress.
func WithListenAddress(addr string) Option {
	return func(o *Options) { o.ListenAddress = addr }
}

// WithWorkThreadCount sets the worker pool size. Equivalent to
// Server.SetWorkThreadCount.
func WithWorkThreadCount(n int) Option {
	return func(o *Options) { o.WorkThreadCount = n }
}

// WithReadLimit caps the maximum accepted frame body length.
func WithReadLimit(limit int) Option {
	return func(o *Options) { o.ReadLimit = limit }
}

// WithInitialBodyCapacity overrides the receive buffer's starting capacity.
func WithInitialBodyCapacity(n int) Option {
	return func(o *Options) { o.InitialBodyCapacity = n }
}

// WithPollTimeout overrides the reactor's bounded wait interval.
func WithPollTimeout(d time.Duration) Option {
	return func(o *Options) { o.PollTimeout = d }
}

// WithLogger injects a logger for lifecycle diagnostics.
func WithLogger(l *logrus.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// validate rejects configuration values that can never be serviced,
// wrapping ErrInvalidArgument with the offending field.
func (o *Options) validate() error {
	if o.WorkThreadCount < 0 {
		return fmt.Errorf("%w: work thread count %d must not be negative", ErrInvalidArgument, o.WorkThreadCount)
	}
	if o.ReadLimit < 0 {
		return fmt.Errorf("%w: read limit %d must not be negative", ErrInvalidArgument, o.ReadLimit)
	}
	if o.InitialBodyCapacity <= 0 {
		return fmt.Errorf("%w: initial body capacity %d must be positive", ErrInvalidArgument, o.InitialBodyCapacity)
	}
	if o.PollTimeout <= 0 {
		return fmt.Errorf("%w: poll timeout %s must be positive", ErrInvalidArgument, o.PollTimeout)
	}
	return nil
}

func defaultWorkThreadCount() int {
	n := runtime.NumCPU() * 2
	if n < 1 {
		n = 1
	}
	return n
}
