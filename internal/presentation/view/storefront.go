// Package view renders snapshots for the terminal. Each variant gets its
// own renderer; both are read-only observers fed from Subscribe.
package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/syncroot/roomsync/pkg/variants/commerce"
)

// Storefront renders commerce snapshots as markdown via glamour.
type Storefront struct {
	render func(string) (string, error)
}

// NewStorefront initializes the glamour renderer with auto light/dark
// detection.
func NewStorefront() *Storefront {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	return &Storefront{
		render: func(markdown string) (string, error) {
			return r.Render(markdown)
		},
	}
}

// Render returns the styled terminal output for a snapshot.
func (s *Storefront) Render(snap commerce.Snapshot) (string, error) {
	return s.render(s.Markdown(snap))
}

// Markdown builds the storefront view as plain markdown.
func (s *Storefront) Markdown(snap commerce.Snapshot) string {
	var b strings.Builder

	b.WriteString("# Storefront\n\n")

	if len(snap.Catalog) > 0 {
		b.WriteString("## Catalog\n\n")
		b.WriteString("| Item | Price |\n|---|---|\n")
		for _, item := range snap.Catalog {
			fmt.Fprintf(&b, "| %s | %.2f |\n", item.Name, item.Price)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Cart\n\n")
	if len(snap.Cart.Items) == 0 {
		b.WriteString("_Your cart is empty._\n\n")
	} else {
		b.WriteString("| Item | Qty | Price | Total |\n|---|---|---|---|\n")
		for _, item := range snap.Cart.Items {
			fmt.Fprintf(&b, "| %s | %d | %.2f | %.2f |\n", item.Name, item.Qty, item.Price, item.Total)
		}
		fmt.Fprintf(&b, "\n**Grand total: %.2f**\n\n", snap.Cart.GrandTotal)
	}

	if snap.LastOrder != nil {
		fmt.Fprintf(&b, "## Order %s\n\n", snap.LastOrder.ID)
		for _, item := range snap.LastOrder.Items {
			fmt.Fprintf(&b, "- %s x%d\n", item.Name, item.Qty)
		}
		fmt.Fprintf(&b, "\nPaid: %.2f\n", snap.LastOrder.TotalAmount)
	}

	return b.String()
}
