// Package device adapts a USB-attached quantum random number generator to
// a simple blocking Read/Info/HealthCheck surface, built on
// github.com/google/gousb.
package device

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/gousb"

	"github.com/docdailey/quantum-entropy-api/internal/qrngerr"
)

const (
	// VendorID and ProductID identify the Quantis-class QRNG over USB.
	VendorID  = 0x0aba
	ProductID = 0x0102

	// EndpointIn is the bulk IN endpoint address entropy is read from.
	EndpointIn = 0x81

	// MaxTransferBytes is the largest single bulk transfer the device accepts.
	MaxTransferBytes = 65536

	// TransferTimeout bounds each individual bulk transfer, not the
	// aggregate Read call.
	TransferTimeout = 5 * time.Second
)

// Info describes an opened device. It is immutable after Open returns.
type Info struct {
	Product string
	Serial  string
	Version string
}

// Device owns an exclusive, opened USB interface to a QRNG. It is not safe
// for concurrent use; callers must serialize access (the refill task and
// the dispatcher's fallback path share one Device behind a mutex).
type Device struct {
	ctx    *gousb.Context
	usbDev *gousb.Device
	config *gousb.Config
	intf   *gousb.Interface
	epIn   *gousb.InEndpoint

	info Info
}

// Open enumerates all devices matching VendorID/ProductID and opens the
// index-th match, claiming interface 0. The caller owns the returned
// Device exclusively and must call Close when done.
func Open(index int) (*Device, error) {
	ctx := gousb.NewContext()

	matches, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(VendorID) && desc.Product == gousb.ID(ProductID)
	})
	if err != nil {
		ctx.Close()
		return nil, qrngerr.Wrap(qrngerr.UsbTransport, "enumerate USB devices", err)
	}

	if index < 0 || index >= len(matches) {
		for _, m := range matches {
			m.Close()
		}
		ctx.Close()
		return nil, qrngerr.ErrDeviceNotFound
	}

	chosen := matches[index]
	for i, m := range matches {
		if i != index {
			m.Close()
		}
	}

	config, err := chosen.Config(1)
	if err != nil {
		chosen.Close()
		ctx.Close()
		return nil, qrngerr.Wrap(qrngerr.UsbTransport, "set USB configuration", err)
	}

	intf, err := config.Interface(0, 0)
	if err != nil {
		config.Close()
		chosen.Close()
		ctx.Close()
		return nil, qrngerr.Wrap(qrngerr.UsbTransport, "claim USB interface 0", err)
	}

	epIn, err := intf.InEndpoint(EndpointIn)
	if err != nil {
		intf.Close()
		config.Close()
		chosen.Close()
		ctx.Close()
		return nil, qrngerr.Wrap(qrngerr.UsbTransport, "open bulk IN endpoint", err)
	}

	d := &Device{
		ctx:    ctx,
		usbDev: chosen,
		config: config,
		intf:   intf,
		epIn:   epIn,
	}

	d.info = d.readInfo()
	log.Printf("device: opened index %d (product=%q serial=%q version=%s)", index, d.info.Product, d.info.Serial, d.info.Version)

	return d, nil
}

// Close releases the USB interface, configuration, device handle, and
// libusb context, in that order.
func (d *Device) Close() error {
	if d.intf != nil {
		d.intf.Close()
	}
	if d.config != nil {
		d.config.Close()
	}
	if d.usbDev != nil {
		d.usbDev.Close()
	}
	if d.ctx != nil {
		d.ctx.Close()
	}
	return nil
}

// Info returns the device's descriptor-derived metadata.
func (d *Device) Info() Info {
	return d.info
}

func (d *Device) readInfo() Info {
	product, err := d.usbDev.Product()
	if err != nil || product == "" {
		product = "Unknown"
	}
	serial, err := d.usbDev.SerialNumber()
	if err != nil || serial == "" {
		serial = "Unknown"
	}

	version := "Unknown"
	if d.usbDev.Desc != nil {
		version = fmt.Sprintf("%d.%d", d.usbDev.Desc.Device.Major(), d.usbDev.Desc.Device.Minor())
	}

	return Info{Product: product, Serial: serial, Version: version}
}

// Read performs a blocking read of exactly n bytes from the IN endpoint,
// issuing repeated bulk transfers of at most MaxTransferBytes until n bytes
// have accumulated. Each transfer is bounded by TransferTimeout; a transfer
// returning zero bytes before n is reached fails with a Timeout error.
func (d *Device) Read(n int) ([]byte, error) {
	buf := make([]byte, n)
	total := 0

	for total < n {
		chunk := n - total
		if chunk > MaxTransferBytes {
			chunk = MaxTransferBytes
		}

		ctx, cancel := context.WithTimeout(context.Background(), TransferTimeout)
		read, err := d.epIn.ReadContext(ctx, buf[total:total+chunk])
		cancel()

		if err != nil {
			return nil, qrngerr.Wrap(qrngerr.UsbTransport, "USB bulk read failed", err)
		}
		if read == 0 {
			return nil, qrngerr.New(qrngerr.Timeout, "read timeout")
		}

		total += read
	}

	return buf, nil
}

// HealthCheck reads 16 bytes and reports whether they are not all
// identical, a minimal liveness check rather than a statistical test. Any
// read failure is reported as unhealthy rather than propagated, since a
// health probe should report a status, not bubble up an error to callers
// that just want a bool.
func (d *Device) HealthCheck() bool {
	data, err := d.Read(16)
	if err != nil {
		return false
	}
	return hasVariation(data)
}

// hasVariation reports whether data contains at least one byte differing
// from the first, the liveness sanity check HealthCheck is built on.
func hasVariation(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	first := data[0]
	for _, b := range data[1:] {
		if b != first {
			return true
		}
	}
	return false
}
