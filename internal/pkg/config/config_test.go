package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("skyglobe-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Telemetry.Hour != 2 {
		t.Errorf("telemetry.hour = %d, want 2", cfg.Telemetry.Hour)
	}
	if cfg.Telemetry.Mode != ModePoll {
		t.Errorf("telemetry.mode = %q", cfg.Telemetry.Mode)
	}
	if cfg.Telemetry.PollInterval != 5*time.Minute {
		t.Errorf("telemetry.poll_interval = %v", cfg.Telemetry.PollInterval)
	}
	if cfg.Geocode.Language != "en" || cfg.Geocode.Timeout != 10*time.Second {
		t.Errorf("geocode = %+v", cfg.Geocode)
	}
	if cfg.Globe.AltitudeScale != 0.003 || cfg.Globe.ColorFactor != 0.05 || cfg.Globe.MarkerRadius != 0.045 {
		t.Errorf("globe = %+v", cfg.Globe)
	}
	if cfg.Camera.FovY != 45 || len(cfg.Camera.Position) != 3 || cfg.Camera.Position[1] != 1.5 {
		t.Errorf("camera = %+v", cfg.Camera)
	}
	if cfg.Sessions.TTL != 30*time.Minute {
		t.Errorf("sessions.ttl = %v", cfg.Sessions.TTL)
	}
	if cfg.Tracing.ServiceName != "skyglobe-test" {
		t.Errorf("tracing.service_name = %q", cfg.Tracing.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SKYGLOBE_TELEMETRY_HOUR", "17")
	t.Setenv("SKYGLOBE_TELEMETRY_PROXY_PREFIX", "https://corsproxy.io/?")
	t.Setenv("SKYGLOBE_SERVER_PORT", "9090")

	cfg, err := Load("skyglobe-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Telemetry.Hour != 17 {
		t.Errorf("telemetry.hour = %d, want 17", cfg.Telemetry.Hour)
	}
	if cfg.Telemetry.ProxyPrefix != "https://corsproxy.io/?" {
		t.Errorf("telemetry.proxy_prefix = %q", cfg.Telemetry.ProxyPrefix)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d", cfg.Server.Port)
	}
}

func TestLoad_InvalidHour(t *testing.T) {
	t.Setenv("SKYGLOBE_TELEMETRY_HOUR", "24")

	_, err := Load("skyglobe-test")
	if err == nil || !strings.Contains(err.Error(), "telemetry.hour") {
		t.Fatalf("expected telemetry.hour error, got %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Telemetry: TelemetryConfig{Mode: "push", Hour: -1},
		Camera:    CameraConfig{},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "telemetry.mode", "telemetry.hour", "geocode.base_url", "camera.fov", "camera.position"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}

func TestValidate_SubscribeNeedsNATS(t *testing.T) {
	t.Setenv("SKYGLOBE_TELEMETRY_MODE", ModeSubscribe)
	t.Setenv("SKYGLOBE_NATS_ENABLED", "false")

	_, err := Load("skyglobe-test")
	if err == nil || !strings.Contains(err.Error(), "requires nats.enabled") {
		t.Fatalf("expected nats requirement error, got %v", err)
	}
}

func TestCameraConfig_Camera(t *testing.T) {
	cam := CameraConfig{FovY: 60, Position: []float64{0, 0, 5}}.Camera()
	if cam.FovY != 60 {
		t.Errorf("expected fov 60, got %v", cam.FovY)
	}
	if cam.Position.Z != 5 || cam.Position.Y != 0 {
		t.Errorf("unexpected position %+v", cam.Position)
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		t.Errorf("expected default clip planes, got near %v far %v", cam.Near, cam.Far)
	}
}
