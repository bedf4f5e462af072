package dock

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"clixx-go/errcode"
)

// Probe is one named backend candidate. Probe reports whether the backend's
// hardware or support library is present; New builds an unconfigured Dock.
type Probe struct {
	Name  string
	Probe func() error
	New   func() (Dock, error)
}

// Select returns the Dock of the first probe that succeeds, trying probes in
// order. Every result is logged. With no usable backend it fails with
// errcode.NoBackend.
func Select(probes []Probe, log zerolog.Logger) (Dock, string, error) {
	var tried []string
	for _, p := range probes {
		tried = append(tried, p.Name)
		if p.Probe != nil {
			if err := p.Probe(); err != nil {
				log.Debug().Str("backend", p.Name).Err(err).Msg("probe failed")
				continue
			}
		}
		d, err := p.New()
		if err != nil {
			log.Warn().Str("backend", p.Name).Err(err).Msg("backend present but unusable")
			continue
		}
		log.Info().Str("backend", p.Name).Msg("dock selected")
		return d, p.Name, nil
	}
	return nil, "", errcode.New(errcode.NoBackend, "select", "tried "+strings.Join(tried, ", "))
}

// Named returns the probe called name, if present.
func Named(probes []Probe, name string) (Probe, bool) {
	for _, p := range probes {
		if p.Name == name {
			return p, true
		}
	}
	return Probe{}, false
}

var (
	defaultOnce    sync.Once
	defaultDock    Dock
	defaultBackend string
	defaultErr     error
)

// Default selects among the platform's built-in probes once per process and
// returns the same result on every call; later configs are ignored.
func Default(c HostConfig) (Dock, string, error) {
	defaultOnce.Do(func() {
		defaultDock, defaultBackend, defaultErr = Select(Probes(c), c.Logger)
	})
	return defaultDock, defaultBackend, defaultErr
}
