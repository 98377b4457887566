package metrics

import (
	"github.com/vsinha/gestionale/pkg/infrastructure/events"
)

// ObservedEvents are the event types EventHandler subscribes to
var ObservedEvents = []string{
	events.StockAllocatedEvent,
	events.StockReceivedEvent,
	events.RecipeReplacedEvent,
	events.ShortageIdentifiedEvent,
}

// EventHandler returns a subscriber that counts domain events by type and
// publishes the per-material shortfall carried by shortage events.
func (c *ProductionMetricsCollector) EventHandler() *events.HandlerFunc {
	return &events.HandlerFunc{
		Types: ObservedEvents,
		Fn: func(e events.Event) error {
			c.eventsTotal.WithLabelValues(e.Type()).Inc()

			shortage, ok := e.Data().(events.ShortageIdentified)
			if !ok {
				return nil
			}
			for _, line := range shortage.Shortages {
				qty, _ := line.ShortQty.Float64()
				c.materialShortfall.WithLabelValues(string(shortage.ProductID), string(line.MaterialID)).Set(qty)
			}
			return nil
		},
	}
}
