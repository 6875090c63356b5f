//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "sabor-arte-api"
	ConsumerName = "dining-room-app"

	StateMenuSeeded   = "the menu holds tartare and mousse"
	StateItemMissing  = "no menu item with id ghost"
	StateGuestSession = "guest pact-guest is signed in"
	StateGuestCart    = "guest pact-guest has two tartare in the cart"
)

const (
	TartareID      = "pact-tartare"
	MousseID       = "pact-mousse"
	MissingItemID  = "ghost"
	GuestUID       = "pact-guest"
	GuestToken     = "pact-guest-token"
	CustomerName   = "João"
	CustomerTable  = "12"
	ExpectedTotal  = "136.00"
	DessertsFilter = "sobremesas"
)

// MenuItem is a seeded menu document.
type MenuItem struct {
	ID          string
	Name        string
	Description string
	Price       string
	Category    string
}

// SeedMenu is the catalog the provider loads for the menu states.
func SeedMenu() []MenuItem {
	return []MenuItem{
		{ID: TartareID, Name: "Tartare de Wagyu", Description: "Wagyu A5 com gema curada", Price: "68.00", Category: "entradas"},
		{ID: MousseID, Name: "Mousse de Chocolate Belga", Description: "Chocolate 70% e flor de sal", Price: "38.00", Category: "sobremesas"},
	}
}

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the dining room consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
