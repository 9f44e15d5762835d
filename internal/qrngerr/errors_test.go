package qrngerr

import (
	"errors"
	"testing"
)

func TestNewWithoutDetails(t *testing.T) {
	err := New(InvalidParameter, "bad range")
	if err.Error() != "qrng: [InvalidParameter] bad range" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNewWithDetails(t *testing.T) {
	err := New(UsbTransport, "read failed", "libusb: no such device")
	if err.Error() != "qrng: [UsbTransport] read failed: libusb: no such device" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWrapCarriesCauseAsDetails(t *testing.T) {
	cause := errors.New("transport reset")
	err := Wrap(Timeout, "bulk read timed out", cause)
	if err.Details != "transport reset" {
		t.Errorf("Details = %q, want %q", err.Details, "transport reset")
	}
}

func TestKindString(t *testing.T) {
	if DeviceNotFound.String() != "DeviceNotFound" {
		t.Errorf("String() = %q", DeviceNotFound.String())
	}
	if Kind(99).String() != "Unknown" {
		t.Errorf("unknown kind String() = %q, want Unknown", Kind(99).String())
	}
}

func TestPredefinedErrors(t *testing.T) {
	if ErrDeviceNotFound.Kind != DeviceNotFound {
		t.Errorf("ErrDeviceNotFound.Kind = %v", ErrDeviceNotFound.Kind)
	}
	if ErrReadTimeout.Kind != Timeout {
		t.Errorf("ErrReadTimeout.Kind = %v", ErrReadTimeout.Kind)
	}
}
