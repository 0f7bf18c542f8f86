package matching_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"limitbook/internal/book"
	"limitbook/internal/matching"
)

func restingAsk(id string, price float64, qty uint64) *book.Order {
	return &book.Order{ID: id, Side: book.Sell, Price: price, Quantity: qty}
}

func restingBid(id string, price float64, qty uint64) *book.Order {
	return &book.Order{ID: id, Side: book.Buy, Price: price, Quantity: qty}
}

func TestMatch_EmptyOppositeSideProducesNoTrades(t *testing.T) {
	incoming := &book.Order{ID: "0", Side: book.Buy, Price: 100, Quantity: 5}
	asks := book.NewAskSide()

	trades := matching.Match(incoming, asks)

	assert.Empty(t, trades)
	assert.Equal(t, uint64(5), incoming.Quantity)
}

func TestMatch_IncomingWorseThanBestDoesNotMatch(t *testing.T) {
	incoming := &book.Order{ID: "1", Side: book.Buy, Price: 99, Quantity: 5}
	asks := book.NewAskSide()
	asks.Append(100, restingAsk("0", 100, 5))

	trades := matching.Match(incoming, asks)

	assert.Empty(t, trades)
	assert.Equal(t, uint64(5), incoming.Quantity)
}

func TestMatch_ExactCrossFillsCompletely(t *testing.T) {
	incoming := &book.Order{ID: "1", Side: book.Buy, Price: 50, Quantity: 5}
	asks := book.NewAskSide()
	resting := restingAsk("0", 50, 5)
	asks.Append(50, resting)

	trades := matching.Match(incoming, asks)

	if assert.Len(t, trades, 1) {
		tr := trades[0]
		assert.Equal(t, incoming, tr.Buy)
		assert.Equal(t, resting, tr.Sell)
		assert.Equal(t, uint64(5), tr.Quantity)
		assert.Equal(t, 50.0, tr.Price)
	}
	assert.Equal(t, uint64(0), incoming.Quantity)
	assert.Equal(t, uint64(0), resting.Quantity)
	assert.Equal(t, 0, asks.Len())
}

func TestMatch_PartialFillLeavesRestingResidual(t *testing.T) {
	incoming := &book.Order{ID: "1", Side: book.Buy, Price: 100, Quantity: 4}
	asks := book.NewAskSide()
	resting := restingAsk("0", 100, 10)
	asks.Append(100, resting)

	trades := matching.Match(incoming, asks)

	if assert.Len(t, trades, 1) {
		assert.Equal(t, uint64(4), trades[0].Quantity)
	}
	assert.Equal(t, uint64(0), incoming.Quantity)
	assert.Equal(t, uint64(6), resting.Quantity)
	assert.Equal(t, 1, asks.Len())
}

func TestMatch_SweepsMultipleLevelsInPricePriority(t *testing.T) {
	incoming := &book.Order{ID: "2", Side: book.Buy, Price: 100, Quantity: 2}
	asks := book.NewAskSide()
	first := restingAsk("0", 99, 1)
	second := restingAsk("1", 100, 1)
	asks.Append(99, first)
	asks.Append(100, second)

	trades := matching.Match(incoming, asks)

	if assert.Len(t, trades, 2) {
		assert.Equal(t, 99.0, trades[0].Price)
		assert.Equal(t, first, trades[0].Sell)
		assert.Equal(t, 100.0, trades[1].Price)
		assert.Equal(t, second, trades[1].Sell)
	}
	assert.Equal(t, uint64(0), incoming.Quantity)
	assert.Equal(t, 0, asks.Len())
}

func TestMatch_TimePriorityWithinALevel(t *testing.T) {
	incoming := &book.Order{ID: "2", Side: book.Buy, Price: 100, Quantity: 4}
	asks := book.NewAskSide()
	first := restingAsk("0", 100, 2)
	second := restingAsk("1", 100, 3)
	asks.Append(100, first)
	asks.Append(100, second)

	trades := matching.Match(incoming, asks)

	if assert.Len(t, trades, 2) {
		assert.Equal(t, first, trades[0].Sell)
		assert.Equal(t, uint64(2), trades[0].Quantity)
		assert.Equal(t, second, trades[1].Sell)
		assert.Equal(t, uint64(2), trades[1].Quantity)
	}
	assert.Equal(t, uint64(1), second.Quantity)
}

func TestMatch_QuantityExceedingLiquidityRestsResidual(t *testing.T) {
	incoming := &book.Order{ID: "1", Side: book.Sell, Price: 90, Quantity: 20}
	bids := book.NewBidSide()
	resting := restingBid("0", 100, 5)
	bids.Append(100, resting)

	trades := matching.Match(incoming, bids)

	if assert.Len(t, trades, 1) {
		assert.Equal(t, uint64(5), trades[0].Quantity)
	}
	assert.Equal(t, uint64(15), incoming.Quantity, "residual must remain on the incoming order")
	assert.Equal(t, 0, bids.Len())
}

func TestMatch_SellIncomingBuildsTradeWithRestingAsBuyer(t *testing.T) {
	incoming := &book.Order{ID: "1", Side: book.Sell, Price: 100, Quantity: 5}
	bids := book.NewBidSide()
	resting := restingBid("0", 100, 5)
	bids.Append(100, resting)

	trades := matching.Match(incoming, bids)

	if assert.Len(t, trades, 1) {
		assert.Equal(t, resting, trades[0].Buy)
		assert.Equal(t, incoming, trades[0].Sell)
	}
}

func TestMatch_ZeroQuantityIncomingYieldsNoTrades(t *testing.T) {
	incoming := &book.Order{ID: "1", Side: book.Buy, Price: 100, Quantity: 0}
	asks := book.NewAskSide()
	asks.Append(100, restingAsk("0", 100, 5))

	trades := matching.Match(incoming, asks)

	assert.Empty(t, trades)
}
