package trigger

import (
	"fmt"
	"io"

	"go.bug.st/serial/enumerator"
)

// ListSerialPorts writes one line per serial port, with USB identifiers when
// known, to help pick the DLP-IO8-G device.
func ListSerialPorts(w io.Writer) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "no serial ports found")
		return nil
	}
	for _, p := range ports {
		if p.IsUSB {
			fmt.Fprintf(w, "%s\tusb %s:%s serial=%s %s\n", p.Name, p.VID, p.PID, p.SerialNumber, p.Product)
		} else {
			fmt.Fprintf(w, "%s\n", p.Name)
		}
	}
	return nil
}
