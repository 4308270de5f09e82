package cart

import (
	"testing"

	"github.com/google/uuid"
)

func TestAddMergesSameProduct(t *testing.T) {
	store := NewStore("guest:abc")
	productID := uuid.New()

	store.Add(Line{ProductID: productID, Name: "Studio Headphones", UnitPricePaise: 14999, Quantity: 1})
	store.Add(Line{ProductID: productID, Name: "Studio Headphones", UnitPricePaise: 14999, Quantity: 2})

	lines := store.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", lines[0].Quantity)
	}
}

func TestAddRefreshesPriceOnMerge(t *testing.T) {
	store := NewStore("guest:abc")
	productID := uuid.New()

	store.Add(Line{ProductID: productID, Name: "Bookshelf Speaker", UnitPricePaise: 25000, Quantity: 1})
	store.Add(Line{ProductID: productID, Name: "Bookshelf Speaker", UnitPricePaise: 22500, Quantity: 1})

	lines := store.Lines()
	if lines[0].UnitPricePaise != 22500 {
		t.Fatalf("expected refreshed price 22500, got %d", lines[0].UnitPricePaise)
	}
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	store := NewStore("guest:abc")
	productID := uuid.New()
	store.Add(Line{ProductID: productID, Name: "USB Audio Interface", UnitPricePaise: 8999, Quantity: 2})

	store.SetQuantity(productID, 0)

	if !store.IsEmpty() {
		t.Fatal("expected cart to be empty after setting quantity to zero")
	}
}

func TestSetQuantityUnknownProductIsNoOp(t *testing.T) {
	store := NewStore("guest:abc")
	store.Add(Line{ProductID: uuid.New(), Name: "Condenser Mic", UnitPricePaise: 12500, Quantity: 1})

	before := store.Snapshot()
	store.SetQuantity(uuid.New(), 5)
	after := store.Snapshot()

	if before.Version != after.Version {
		t.Fatal("expected no version bump for unknown product")
	}
	if len(after.Lines) != 1 || after.Lines[0].Quantity != 1 {
		t.Fatalf("expected existing line untouched, got %+v", after.Lines)
	}
}

func TestTotalSumsLineSubtotals(t *testing.T) {
	store := NewStore("guest:abc")
	store.Add(Line{ProductID: uuid.New(), Name: "Studio Headphones", UnitPricePaise: 14999, Quantity: 3})
	store.Add(Line{ProductID: uuid.New(), Name: "Bookshelf Speaker", UnitPricePaise: 25000, Quantity: 1})

	if got := store.TotalPaise(); got != 69997 {
		t.Fatalf("expected total 69997 paise, got %d", got)
	}
	if got := store.Count(); got != 4 {
		t.Fatalf("expected 4 units, got %d", got)
	}
}

func TestLinesPreserveInsertionOrder(t *testing.T) {
	store := NewStore("guest:abc")
	first := uuid.New()
	second := uuid.New()
	store.Add(Line{ProductID: first, Name: "A", UnitPricePaise: 100, Quantity: 1})
	store.Add(Line{ProductID: second, Name: "B", UnitPricePaise: 200, Quantity: 1})
	store.Add(Line{ProductID: first, Name: "A", UnitPricePaise: 100, Quantity: 1})

	lines := store.Lines()
	if lines[0].ProductID != first || lines[1].ProductID != second {
		t.Fatal("expected insertion order to be preserved across merges")
	}
}

func TestClearEmptiesCart(t *testing.T) {
	store := NewStore("guest:abc")
	store.Add(Line{ProductID: uuid.New(), Name: "Subwoofer", UnitPricePaise: 45000, Quantity: 1})

	store.Clear()

	if !store.IsEmpty() {
		t.Fatal("expected empty cart after clear")
	}
	if store.TotalPaise() != 0 {
		t.Fatal("expected zero total after clear")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	store := NewStore("user:42")
	store.Add(Line{ProductID: uuid.New(), Name: "DAC", UnitPricePaise: 19999, Quantity: 2})
	snap := store.Snapshot()

	restored := NewStore("user:42")
	restored.Restore(snap)

	if restored.TotalPaise() != store.TotalPaise() {
		t.Fatal("expected restored total to match")
	}
	if len(restored.Lines()) != 1 {
		t.Fatalf("expected 1 restored line, got %d", len(restored.Lines()))
	}
}
