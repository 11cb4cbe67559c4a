package hc05

import (
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ResetUSBDevice performs a USB-level reset of the adapter behind a port.
// HC-05 breakout boards on cheap CH340/CP210x adapters occasionally wedge in
// a state where the port opens but never answers; a bus reset recovers them
// without replugging.
//
// Requirements:
// - usbreset utility must be installed (from usbutils package)
// - Requires appropriate permissions (typically root/sudo)
//
// Returns:
// - nil if reset successful
// - ErrUSBResetNotAvailable if usbreset utility not found
// - ErrUSBInfoNotAvailable if device is not USB or metadata unavailable
// - error if reset fails
func ResetUSBDevice(portPath string) error {
	port, found := FindPort(portPath)
	if !found {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, portPath)
	}
	return resetPort(port)
}

// ResetUSBDeviceBySerial resets a USB adapter by its serial number. Useful
// when device paths change after re-enumeration or when several adapters are
// connected.
func ResetUSBDeviceBySerial(serialNumber string) error {
	ports, err := ListPorts()
	if err != nil {
		return err
	}
	for _, port := range ports {
		if port.IsUSB && port.SerialNumber == serialNumber {
			return resetPort(port)
		}
	}
	return fmt.Errorf("device with serial %s not found", serialNumber)
}

func resetPort(port Port) error {
	if !port.IsUSB || port.VendorID == "" || port.ProductID == "" {
		return ErrUSBInfoNotAvailable
	}

	if !IsUSBResetAvailable() {
		return ErrUSBResetNotAvailable
	}

	// usbreset accepts a vendor:product pair and finds the device itself
	id := strings.ToLower(port.VendorID + ":" + port.ProductID)
	cmd := exec.Command("usbreset", id)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("usbreset failed: %w (output: %s)", err, string(output))
	}

	// USB devices typically take 1-2 seconds to re-enumerate
	time.Sleep(2 * time.Second)

	return nil
}

// IsUSBResetAvailable checks if usbreset utility is available in PATH
func IsUSBResetAvailable() bool {
	_, err := exec.LookPath("usbreset")
	return err == nil
}
