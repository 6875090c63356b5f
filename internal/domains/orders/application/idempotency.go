package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	cartdomain "github.com/Apurer/sabor-arte/internal/domains/cart/domain"
)

type normalizedCheckout struct {
	Customer string           `json:"customer"`
	Table    string           `json:"table"`
	Lines    []normalizedLine `json:"lines"`
}

type normalizedLine struct {
	ItemID   string `json:"itemId"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

// FingerprintCheckout builds a deterministic hash of the checkout form and the
// cart contents (excluding the idempotency key).
func FingerprintCheckout(customer, table string, lines []cartdomain.Line) (string, error) {
	normalized := normalizedCheckout{
		Customer: strings.TrimSpace(customer),
		Table:    strings.TrimSpace(table),
		Lines:    make([]normalizedLine, 0, len(lines)),
	}
	for _, l := range lines {
		normalized.Lines = append(normalized.Lines, normalizedLine{
			ItemID:   l.Item.ID,
			Price:    l.Item.Price.StringFixed(2),
			Quantity: l.Quantity,
		})
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
