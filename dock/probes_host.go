//go:build !rp2040 && !rp2350

package dock

import (
	"slices"
	"strconv"

	"clixx-go/buses"
	"clixx-go/errcode"
	"clixx-go/pinctl"
	"clixx-go/table"
)

// Probes lists the host backends in priority order: periph.io GPIO, the
// Linux GPIO character device, then a SmartDock on a serial port.
func Probes(c HostConfig) []Probe {
	hostBuses := func() buses.Provider {
		return buses.NewHost(buses.HostConfig{
			I2C: c.I2C, SPI: c.SPI, SPIHz: c.SPIHz,
			Serial: c.Serial, Baud: c.Baud,
		})
	}
	periph := pinctl.NewPeriph()
	cdev := pinctl.NewCdev(c.Chip)
	var smartPort string

	return []Probe{
		{
			Name:  "raspberry",
			Probe: periph.Probe,
			New: func() (Dock, error) {
				tbl := c.tableOr(table.Raspberry)
				if err := headerWired(tbl); err != nil {
					return nil, err
				}
				return NewGPIO(tbl, periph,
					append(c.options("raspberry"), WithBuses(hostBuses()))...), nil
			},
		},
		{
			Name:  "raspberry-gpiocdev",
			Probe: cdev.Probe,
			New: func() (Dock, error) {
				tbl := c.tableOr(table.Raspberry)
				if err := headerWired(tbl); err != nil {
					return nil, err
				}
				return NewGPIO(tbl, cdev,
					append(c.options("raspberry-gpiocdev"), WithBuses(hostBuses()))...), nil
			},
		},
		{
			Name: "smartdock",
			Probe: func() error {
				p, err := findSmartPort(c.SmartPort)
				smartPort = p
				return err
			},
			New: func() (Dock, error) { return NewSmart(smartPort, c.Baud), nil },
		},
	}
}

// headerWired rejects a table naming a header position that is not a GPIO,
// so a Pi backend is never selected with wiring it cannot set up.
func headerWired(tbl *table.Table) error {
	for _, d := range tbl.Descriptors() {
		for _, u := range d.Pins() {
			if _, ok := pinctl.PhysicalToBCM(u.Pin); !ok {
				return errcode.New(errcode.InvalidTable, "table "+d.ID.String(),
					"header pin "+strconv.Itoa(u.Pin)+" is not a GPIO; supply a wiring file with --table")
			}
		}
	}
	return nil
}

func findSmartPort(want string) (string, error) {
	ports, err := buses.SerialPorts()
	if err != nil {
		return "", err
	}
	if want != "" {
		if !slices.Contains(ports, want) {
			return "", errcode.New(errcode.NoBackend, "smartdock", want+" not present")
		}
		return want, nil
	}
	if len(ports) == 0 {
		return "", errcode.New(errcode.NoBackend, "smartdock", "no serial ports")
	}
	return ports[0], nil
}
