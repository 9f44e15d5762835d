package config

import "testing"

func TestApplyValuesOverridesDefaults(t *testing.T) {
	cfg := &Config{
		Addr:          DefaultAddr,
		DeviceIndex:   DefaultDeviceIndex,
		BufferSize:    DefaultBufferSize,
		HighWaterMark: DefaultHighWaterMark,
	}

	applyValues(map[string]string{
		"QRNG_ADDR":           "127.0.0.1:9090",
		"QRNG_DEVICE_INDEX":   "2",
		"QRNG_BUFFER_SIZE":    "1024",
		"QRNG_HIGH_WATER_MARK": "0.5",
	}, cfg)

	if cfg.Addr != "127.0.0.1:9090" {
		t.Errorf("Addr = %q, want 127.0.0.1:9090", cfg.Addr)
	}
	if cfg.DeviceIndex != 2 {
		t.Errorf("DeviceIndex = %d, want 2", cfg.DeviceIndex)
	}
	if cfg.BufferSize != 1024 {
		t.Errorf("BufferSize = %d, want 1024", cfg.BufferSize)
	}
	if cfg.HighWaterMark != 0.5 {
		t.Errorf("HighWaterMark = %v, want 0.5", cfg.HighWaterMark)
	}
}

func TestApplyValuesIgnoresInvalidNumbers(t *testing.T) {
	cfg := &Config{BufferSize: DefaultBufferSize, HighWaterMark: DefaultHighWaterMark}

	applyValues(map[string]string{
		"QRNG_BUFFER_SIZE":     "not-a-number",
		"QRNG_HIGH_WATER_MARK": "2.0", // out of (0,1] range
	}, cfg)

	if cfg.BufferSize != DefaultBufferSize {
		t.Errorf("BufferSize should be unchanged on invalid input, got %d", cfg.BufferSize)
	}
	if cfg.HighWaterMark != DefaultHighWaterMark {
		t.Errorf("HighWaterMark should be unchanged on out-of-range input, got %v", cfg.HighWaterMark)
	}
}

func TestApplyEnvFileParsesSimpleLines(t *testing.T) {
	cfg := &Config{Addr: DefaultAddr}
	applyEnvFile("# comment\nQRNG_ADDR=0.0.0.0:7070\n\nMALFORMED_LINE\n", cfg)

	if cfg.Addr != "0.0.0.0:7070" {
		t.Errorf("Addr = %q, want 0.0.0.0:7070", cfg.Addr)
	}
}
