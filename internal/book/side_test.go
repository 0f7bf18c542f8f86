package book_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"limitbook/internal/book"
)

func TestBidSide_OrdersHighestFirst(t *testing.T) {
	side := book.NewBidSide()
	side.Append(99, &book.Order{ID: "0", Price: 99})
	side.Append(101, &book.Order{ID: "1", Price: 101})
	side.Append(100, &book.Order{ID: "2", Price: 100})

	items := side.Items()
	if assert.Len(t, items, 3) {
		assert.Equal(t, 101.0, items[0].PriceLevel)
		assert.Equal(t, 100.0, items[1].PriceLevel)
		assert.Equal(t, 99.0, items[2].PriceLevel)
	}
}

func TestAskSide_OrdersLowestFirst(t *testing.T) {
	side := book.NewAskSide()
	side.Append(99, &book.Order{ID: "0", Price: 99})
	side.Append(101, &book.Order{ID: "1", Price: 101})
	side.Append(100, &book.Order{ID: "2", Price: 100})

	items := side.Items()
	if assert.Len(t, items, 3) {
		assert.Equal(t, 99.0, items[0].PriceLevel)
		assert.Equal(t, 100.0, items[1].PriceLevel)
		assert.Equal(t, 101.0, items[2].PriceLevel)
	}
}

func TestBookSide_AppendSamePriceKeepsArrivalOrder(t *testing.T) {
	side := book.NewAskSide()
	first := &book.Order{ID: "0", Price: 100}
	second := &book.Order{ID: "1", Price: 100}
	side.Append(100, first)
	side.Append(100, second)

	items := side.Items()
	if assert.Len(t, items, 1) {
		assert.Equal(t, []*book.Order{first, second}, items[0].Orders)
	}
}

func TestBookSide_RemoveErasesEmptyLevel(t *testing.T) {
	side := book.NewBidSide()
	o := &book.Order{ID: "0", Price: 100}
	side.Append(100, o)

	found := side.Remove(o)
	assert.True(t, found)
	assert.Equal(t, 0, side.Len())
}

func TestBookSide_RemoveMissingOrderReportsFalse(t *testing.T) {
	side := book.NewBidSide()
	side.Append(100, &book.Order{ID: "0", Price: 100})

	found := side.Remove(&book.Order{ID: "nope", Price: 100})
	assert.False(t, found)
	assert.Equal(t, 1, side.Len())
}

func TestBookSide_Depth(t *testing.T) {
	side := book.NewBidSide()
	side.Append(100, &book.Order{ID: "0", Price: 100})
	side.Append(100, &book.Order{ID: "1", Price: 100})
	side.Append(99, &book.Order{ID: "2", Price: 99})

	levels, orders := side.Depth()
	assert.Equal(t, 2, levels)
	assert.Equal(t, 3, orders)
}
