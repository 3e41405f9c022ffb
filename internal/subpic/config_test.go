package subpic

import (
	"errors"
	"image"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LowThreshold != 50 || cfg.HighThreshold != 200 {
		t.Errorf("thresholds: got %v/%v, want 50/200", cfg.LowThreshold, cfg.HighThreshold)
	}
	if cfg.MinArea != 1000 || cfg.Epsilon != 0.02 || cfg.CloseKernel != 3 {
		t.Errorf("got %+v", cfg)
	}
	if cfg.BlurRadius != 0 || cfg.SortReadingOrder {
		t.Errorf("blur and sorting should be off by default: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative low", func(c *Config) { c.LowThreshold = -1 }},
		{"high not above low", func(c *Config) { c.HighThreshold = c.LowThreshold }},
		{"negative blur", func(c *Config) { c.BlurRadius = -0.5 }},
		{"even kernel", func(c *Config) { c.CloseKernel = 4 }},
		{"zero kernel", func(c *Config) { c.CloseKernel = 0 }},
		{"negative area", func(c *Config) { c.MinArea = -10 }},
		{"zero epsilon", func(c *Config) { c.Epsilon = 0 }},
		{"epsilon too large", func(c *Config) { c.Epsilon = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			var pe *Error
			if !errors.As(err, &pe) || pe.Kind != KindInvalidConfig {
				t.Errorf("got %v, want KindInvalidConfig", err)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	wrapped := &Error{Kind: KindNoContoursFound, Err: errors.New("other text")}
	if !errors.Is(wrapped, ErrNoContoursFound) {
		t.Error("errors.Is should match on kind")
	}
	if errors.Is(loadError(errors.New("boom")), ErrNoContoursFound) {
		t.Error("different kinds must not match")
	}
	if KindLoad.String() != "load" || Kind(99).String() != "kind(99)" {
		t.Errorf("String: got %q and %q", KindLoad.String(), Kind(99).String())
	}
}

func TestSortReadingOrder(t *testing.T) {
	subs := []SubImage{
		{Bounds: image.Rect(300, 210, 400, 300)},
		{Bounds: image.Rect(200, 15, 280, 100)},
		{Bounds: image.Rect(10, 10, 100, 100)},
		{Bounds: image.Rect(10, 200, 100, 300)},
	}
	SortReadingOrder(subs)

	want := []image.Point{{X: 10, Y: 10}, {X: 200, Y: 15}, {X: 10, Y: 200}, {X: 300, Y: 210}}
	for i, w := range want {
		if subs[i].Bounds.Min != w {
			t.Errorf("position %d: got %v, want %v", i, subs[i].Bounds.Min, w)
		}
	}
}
