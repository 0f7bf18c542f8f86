// Package cli implements the reference interactive front-end: a
// whitespace-separated command reader over stdin that drives an
// OrderBook. It is an external collaborator to the matching core, not
// part of it — its only job is turning text into OrderBook calls and
// printing the result.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"limitbook/internal/book"
	"limitbook/internal/orderbook"
)

// CLI reads commands from an input stream and drives book.
type CLI struct {
	book    *orderbook.OrderBook
	factory *book.OrderFactory
	orders  map[string]*book.Order

	in  *bufio.Scanner
	out io.Writer
}

// New returns a CLI reading from in and writing to out.
func New(ob *orderbook.OrderBook, factory *book.OrderFactory, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		book:    ob,
		factory: factory,
		orders:  make(map[string]*book.Order),
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run reads commands until the input is exhausted or "exit" is read.
// Observer panics during add/remove are recovered here so one faulty
// sink cannot take the process down; the matching core itself never
// recovers from them (see package observer).
func (c *CLI) Run() {
	fmt.Fprintln(c.out, "Welcome to the order book CLI.")
	fmt.Fprintln(c.out, "Commands:\n  add BUY|SELL <qty> <price>\n  remove <order_id>\n  print\n  exit")

	for c.in.Scan() {
		line := strings.TrimSpace(c.in.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "exit":
			return
		case "print":
			c.printBook()
		case "add":
			c.handleAdd(fields[1:])
		case "remove":
			c.handleRemove(fields[1:])
		default:
			fmt.Fprintf(c.out, "unknown command: %s\n", fields[0])
		}
	}
}

func (c *CLI) handleAdd(args []string) {
	defer c.recoverObserver()

	if len(args) != 3 {
		fmt.Fprintln(c.out, "usage: add BUY|SELL <qty> <price>")
		return
	}

	side, err := parseSide(args[0])
	if err != nil {
		fmt.Fprintln(c.out, err)
		return
	}

	qty, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(c.out, "invalid quantity %q: %v\n", args[1], err)
		return
	}

	// Parsed as a decimal first to avoid binary floating-point surprises
	// on the command line, then converted to the float64 the core works
	// with.
	priceDec, err := decimal.NewFromString(args[2])
	if err != nil {
		fmt.Fprintf(c.out, "invalid price %q: %v\n", args[2], err)
		return
	}
	price, _ := priceDec.Float64()

	order, err := c.factory.CreateLimit(qty, price, side)
	if err != nil {
		fmt.Fprintln(c.out, err)
		return
	}

	c.orders[order.ID] = &order
	c.book.AddOrder(&order)

	fmt.Fprintf(c.out, "added %s order id=%s qty=%d price=%s\n", side, order.ID, qty, priceDec.String())
}

func (c *CLI) handleRemove(args []string) {
	defer c.recoverObserver()

	if len(args) != 1 {
		fmt.Fprintln(c.out, "usage: remove <order_id>")
		return
	}

	order, ok := c.orders[args[0]]
	if !ok {
		fmt.Fprintf(c.out, "no such order: %s\n", args[0])
		return
	}

	c.book.RemoveOrder(order)
	delete(c.orders, args[0])
	fmt.Fprintf(c.out, "removed order %s\n", args[0])
}

func (c *CLI) printBook() {
	fmt.Fprintln(c.out, "=== BIDS ===")
	for _, level := range c.book.Bids().Items() {
		printLevel(c.out, level)
	}
	fmt.Fprintln(c.out, "=== ASKS ===")
	for _, level := range c.book.Asks().Items() {
		printLevel(c.out, level)
	}
}

func printLevel(out io.Writer, level *book.PriceLevel) {
	for _, o := range level.Orders {
		fmt.Fprintf(out, "[id=%s qty=%d price=%.2f]  ", o.ID, o.Quantity, level.PriceLevel)
	}
	fmt.Fprintln(out)
}

func (c *CLI) recoverObserver() {
	if r := recover(); r != nil {
		log.Error().Interface("panic", r).Msg("cli: observer panicked, continuing")
		fmt.Fprintln(c.out, "warning: a sink failed while handling that command")
	}
}

func parseSide(s string) (book.Side, error) {
	switch strings.ToUpper(s) {
	case "BUY":
		return book.Buy, nil
	case "SELL":
		return book.Sell, nil
	default:
		return 0, fmt.Errorf("invalid side %q: expected BUY or SELL", s)
	}
}
