package chat

import (
	"regexp"
	"strconv"
	"strings"

	"ledgerchat-backend/pkg/api"
)

// Inline receipt annotation: a single bracketed block the upload pipeline
// embeds in the user's message, e.g.
//
//	[RECIBO|path=/r/abc.jpg|vendor=Ferretería López|subtotal=100.00|tax=16.00|total=116.00|date=2026-08-21|items=Cemento=250.00;Varilla=80.50]
//
// Fields are pipe-separated key=value pairs; items is a semicolon-separated
// name=amount list. The block is removed from the message before the turn is
// processed further, and the extracted fields must flow verbatim into any
// expense the turn creates.
var receiptBlockPattern = regexp.MustCompile(`\[RECIBO\|([^\]]*)\]`)

// ExtractReceiptAnnotation parses the first inline receipt block in msg and
// returns the cleaned message. ok is false when no block is present.
func ExtractReceiptAnnotation(msg string) (receipt api.Receipt, cleaned string, ok bool) {
	m := receiptBlockPattern.FindStringSubmatchIndex(msg)
	if m == nil {
		return api.Receipt{}, msg, false
	}

	body := msg[m[2]:m[3]]
	receipt = parseReceiptBody(body)

	cleaned = strings.TrimSpace(msg[:m[0]] + " " + msg[m[1]:])
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return receipt, cleaned, true
}

func parseReceiptBody(body string) api.Receipt {
	var r api.Receipt
	for _, field := range strings.Split(body, "|") {
		key, value, found := strings.Cut(field, "=")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "path":
			r.Path = value
		case "vendor":
			r.Vendor = value
		case "subtotal":
			r.Subtotal = parseAmount(value)
		case "tax":
			r.Tax = parseAmount(value)
		case "total":
			r.Total = parseAmount(value)
		case "date":
			r.Date = value
		case "items":
			r.Items = parseReceiptItems(value)
		}
	}
	return r
}

func parseReceiptItems(value string) []api.ReceiptItem {
	var items []api.ReceiptItem
	for _, raw := range strings.Split(value, ";") {
		name, amount, found := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !found || name == "" {
			continue
		}
		items = append(items, api.ReceiptItem{
			Name:   name,
			Amount: parseAmount(amount),
		})
	}
	return items
}

func parseAmount(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
