package smartglass

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestDialDefaults(t *testing.T) {
	o := dialDefaults()
	if o.displayName != "go-sdk" {
		t.Errorf("default displayName = %q, want %q", o.displayName, "go-sdk")
	}
	if o.logger.GetLevel() != zerolog.Disabled {
		t.Error("default logger should be disabled")
	}
}

func TestWithDisplayName(t *testing.T) {
	o := dialDefaults()
	WithDisplayName("living-room-remote")(&o)
	if o.displayName != "living-room-remote" {
		t.Errorf("displayName = %q, want %q", o.displayName, "living-room-remote")
	}
}

func TestWithLogger(t *testing.T) {
	o := dialDefaults()
	logger := zerolog.New(zerolog.NewTestWriter(t))
	WithLogger(logger)(&o)
	if o.logger.GetLevel() == zerolog.Disabled {
		t.Error("WithLogger should replace the disabled default")
	}
}

func TestLaunchDefaults(t *testing.T) {
	o := launchDefaults()
	if o.location != LocationDefault {
		t.Errorf("default location = %d, want LocationDefault", o.location)
	}
	if o.params != "" {
		t.Errorf("default params = %q, want empty", o.params)
	}
}

func TestWithLaunchParams(t *testing.T) {
	o := launchDefaults()
	WithLaunchParams("mode=coop")(&o)
	if o.params != "mode=coop" {
		t.Errorf("params = %q, want %q", o.params, "mode=coop")
	}
}

func TestWithLocation(t *testing.T) {
	o := launchDefaults()
	WithLocation(LocationFill)(&o)
	if o.location != LocationFill {
		t.Errorf("location = %d, want LocationFill", o.location)
	}
}
