//go:build rp2040 || rp2350

// clixx-pico is the firmware demo for a Pico carrier: it blinks an LED Tab
// on D0 and samples an AHT20 Tab on T0.
package main

import (
	"context"
	"runtime"
	"time"

	"clixx-go/dock"
	"clixx-go/slot"
	"clixx-go/tabs/aht20"
	"clixx-go/tabs/led"
	"clixx-go/types"
)

func main() {
	time.Sleep(3 * time.Second)
	ctx := context.Background()

	println("[main] selecting dock …")
	d, name, err := dock.Default(dock.HostConfig{})
	if err != nil {
		println("[main] no dock:", err.Error())
		return
	}
	println("[main] backend:", name)
	if err := d.Setup(ctx); err != nil {
		println("[main] setup:", err.Error())
		return
	}
	defer d.Teardown()

	ledSlot, err := d.Slot(types.Digital0)
	if err != nil {
		println("[main] D0:", err.Error())
		return
	}
	lamp := led.New(ledSlot)

	var sensor *aht20.Device
	if s, err := d.Slot(types.TwoWire0); err == nil {
		if tw, ok := s.(*slot.TwoWire); ok {
			sensor = aht20.New(tw, aht20.Config{})
			if err := sensor.Configure(ctx); err != nil {
				println("[main] aht20 configure:", err.Error())
				sensor = nil
			}
		}
	}

	for i := 0; ; i++ {
		if _, err := lamp.Toggle(ctx); err != nil {
			println("[main] toggle error:", err.Error())
		}
		if sensor != nil && i%4 == 0 {
			if s, err := sensor.Read(ctx); err != nil {
				println("[aht20] read error:", err.Error())
			} else {
				println("[aht20] deci-C:", s.DeciCelsius(), "deci-RH:", s.DeciRelHumidity())
			}
		}
		if i%10 == 0 {
			printMem()
		}
		time.Sleep(500 * time.Millisecond)
	}
}

// printMem prints a compact snapshot of TinyGo runtime memory stats.
func printMem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	println(
		"[mem]",
		"alloc:", uint32(ms.Alloc),
		"heapInuse:", uint32(ms.HeapInuse),
		"mallocs:", uint32(ms.Mallocs),
		"frees:", uint32(ms.Frees),
	)
}
