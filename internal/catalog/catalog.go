// Package catalog holds the static registry of repair services offered by the
// bot. It is loaded once at startup and read-only afterwards.
package catalog

import (
	"fmt"
	"strings"
)

// Service describes a single offered repair service. PriceMinor is the price
// in minor currency units; zero means "price on request".
type Service struct {
	ID          string
	DisplayName string
	PriceMinor  int64
}

// Catalog is an immutable, insertion-ordered set of services keyed by id.
type Catalog struct {
	ids  []string
	byID map[string]Service
}

// New builds a catalog from the given services. Ids must be non-empty and
// unique, prices non-negative.
func New(services []Service) (*Catalog, error) {
	c := &Catalog{
		ids:  make([]string, 0, len(services)),
		byID: make(map[string]Service, len(services)),
	}
	for _, svc := range services {
		id := strings.TrimSpace(svc.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog: service with empty id (%q)", svc.DisplayName)
		}
		if strings.TrimSpace(svc.DisplayName) == "" {
			return nil, fmt.Errorf("catalog: service %q has empty display name", id)
		}
		if svc.PriceMinor < 0 {
			return nil, fmt.Errorf("catalog: service %q has negative price %d", id, svc.PriceMinor)
		}
		if _, exists := c.byID[id]; exists {
			return nil, fmt.Errorf("catalog: duplicate service id %q", id)
		}
		svc.ID = id
		c.ids = append(c.ids, id)
		c.byID[id] = svc
	}
	return c, nil
}

// Default returns the built-in phone repair catalog.
func Default() *Catalog {
	c, err := New([]Service{
		{ID: "battery", DisplayName: "🔋 Battery Replacement", PriceMinor: 150000},
		{ID: "screen", DisplayName: "📱 Screen Repair", PriceMinor: 300000},
		{ID: "charging", DisplayName: "⚡ Charging Port Repair", PriceMinor: 120000},
		{ID: "speaker", DisplayName: "🔊 Speaker Repair", PriceMinor: 80000},
		{ID: "button", DisplayName: "🔘 Button Repair", PriceMinor: 50000},
		{ID: "water", DisplayName: "💧 Water Damage Service", PriceMinor: 200000},
		{ID: "other", DisplayName: "🔧 Other", PriceMinor: 0},
	})
	if err != nil {
		// The built-in list is validated by tests; a failure here is a bug.
		panic(err)
	}
	return c
}

// List returns services in insertion order. The returned slice is a copy.
func (c *Catalog) List() []Service {
	out := make([]Service, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Get resolves a service by id.
func (c *Catalog) Get(id string) (Service, bool) {
	svc, ok := c.byID[id]
	return svc, ok
}

// Len reports the number of services.
func (c *Catalog) Len() int {
	return len(c.ids)
}
