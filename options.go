package smartglass

import "github.com/rs/zerolog"

// DialOption configures client behavior at dial time.
type DialOption func(*dialOptions)

type dialOptions struct {
	logger      zerolog.Logger
	displayName string
}

func dialDefaults() dialOptions {
	return dialOptions{
		logger:      zerolog.Nop(),
		displayName: "go-sdk",
	}
}

// WithLogger enables trace/debug logging on the transport and dispatcher.
// The client never logs errors it can return to a caller.
func WithLogger(logger zerolog.Logger) DialOption {
	return func(o *dialOptions) {
		o.logger = logger
	}
}

// WithDisplayName sets the client name announced in the local-join message.
func WithDisplayName(name string) DialOption {
	return func(o *dialOptions) {
		o.displayName = name
	}
}

// LaunchOption configures a title launch.
type LaunchOption func(*launchOptions)

type launchOptions struct {
	params   string
	location ActiveTitleLocation
}

func launchDefaults() launchOptions {
	return launchOptions{
		location: LocationDefault,
	}
}

// WithLaunchParams attaches launch parameters; they are percent-encoded
// into the launch URI.
func WithLaunchParams(params string) LaunchOption {
	return func(o *launchOptions) {
		o.params = params
	}
}

// WithLocation selects where the launched title is placed.
func WithLocation(location ActiveTitleLocation) LaunchOption {
	return func(o *launchOptions) {
		o.location = location
	}
}
