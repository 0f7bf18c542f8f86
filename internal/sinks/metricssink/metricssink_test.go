package metricssink_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limitbook/internal/book"
	"limitbook/internal/events"
	"limitbook/internal/sinks/metricssink"
)

func TestOnEvent_IncrementsEventCounterAndRefreshesDepthGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	depth := func() (int, int) { return 3, 2 }
	s := metricssink.New(reg, "127.0.0.1:0", depth)

	o := &book.Order{ID: "0", Side: book.Buy, Price: 100, Quantity: 5}
	s.OnEvent(events.NewAdd(o))

	families, err := reg.Gather()
	require.NoError(t, err)

	var eventsTotal, bidDepth, askDepth *dto.MetricFamily
	for _, f := range families {
		switch f.GetName() {
		case "orderbook_events_total":
			eventsTotal = f
		case "orderbook_bid_depth":
			bidDepth = f
		case "orderbook_ask_depth":
			askDepth = f
		}
	}

	require.NotNil(t, eventsTotal)
	require.Len(t, eventsTotal.Metric, 1)
	assert.Equal(t, 1.0, eventsTotal.Metric[0].GetCounter().GetValue())
	assert.Equal(t, "add", eventsTotal.Metric[0].Label[0].GetValue())

	require.NotNil(t, bidDepth)
	assert.Equal(t, 3.0, bidDepth.Metric[0].GetGauge().GetValue())
	require.NotNil(t, askDepth)
	assert.Equal(t, 2.0, askDepth.Metric[0].GetGauge().GetValue())
}

func TestOnEvent_MatchAddsToQuantityTotal(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := metricssink.New(reg, "127.0.0.1:0", func() (int, int) { return 0, 0 })

	buy := &book.Order{ID: "1", Side: book.Buy, Price: 100}
	sell := &book.Order{ID: "0", Side: book.Sell, Price: 100}
	s.OnEvent(events.NewMatch(buy, sell, 7, 100))

	families, err := reg.Gather()
	require.NoError(t, err)

	var matchQty *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "orderbook_match_quantity_total" {
			matchQty = f
		}
	}
	require.NotNil(t, matchQty)
	assert.Equal(t, 7.0, matchQty.Metric[0].GetCounter().GetValue())
}
