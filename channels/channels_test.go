package channels

import (
	"errors"
	"strings"
	"testing"

	"datalogger-go/storage"
)

func TestSet_RightPadsAndLeavesOthers(t *testing.T) {
	dev := storage.NewMemDevice()
	tbl := NewTable(dev)
	if err := tbl.Reset(); err != nil {
		t.Fatal(err)
	}

	if err := tbl.Set(1, 10, "DOOR"); err != nil {
		t.Fatal(err)
	}

	padded, err := tbl.GetPadded(1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if padded != "DOOR"+strings.Repeat(" ", 36) {
		t.Fatalf("slot = %q", padded)
	}

	// All other 31 slots still hold their defaults.
	err = tbl.List(func(bank, line int, got string) error {
		if bank == 1 && line == 10 {
			return nil
		}
		if got != DefaultLabel(bank, line) {
			t.Fatalf("b%dc%d = %q", bank, line, got)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSet_RejectsBadInput(t *testing.T) {
	tbl := NewTable(storage.NewMemDevice())
	if err := tbl.Set(0, 0, ""); err == nil {
		t.Fatal("accepted empty name")
	}
	if err := tbl.Set(0, 0, strings.Repeat("A", 41)); err == nil {
		t.Fatal("accepted oversize name")
	}
	if err := tbl.Set(2, 0, "X"); err == nil {
		t.Fatal("accepted bank out of range")
	}
	if err := tbl.Set(0, 16, "X"); err == nil {
		t.Fatal("accepted line out of range")
	}
}

func TestDefaultLabel_EncodesBankAndLine(t *testing.T) {
	got := DefaultLabel(1, 15)
	if len(got) != LabelSize {
		t.Fatalf("len = %d", len(got))
	}
	if !strings.HasSuffix(got, "b1cf") {
		t.Fatalf("label = %q", got)
	}
	if strings.TrimLeft(got, " ") != "b1cf" {
		t.Fatalf("label = %q", got)
	}
}

func TestGet_TrimsPadding(t *testing.T) {
	tbl := NewTable(storage.NewMemDevice())
	if err := tbl.Set(0, 3, "PROGRAM LINK FAILURE"); err != nil {
		t.Fatal(err)
	}
	name, err := tbl.Get(0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if name != "PROGRAM LINK FAILURE" {
		t.Fatalf("name = %q", name)
	}
}

func TestInitialized_FreshThenReset(t *testing.T) {
	dev := storage.NewMemDevice()
	tbl := NewTable(dev)

	ok, err := tbl.Initialized()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("erased table reports initialized")
	}

	if err := tbl.Reset(); err != nil {
		t.Fatal(err)
	}
	ok, err = tbl.Initialized()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("table still uninitialized after reset")
	}
}

func TestInitialized_PropagatesReadFailure(t *testing.T) {
	dev := storage.NewMemDevice()
	dev.ReadErr = errors.New("bus stuck")
	tbl := NewTable(dev)

	if _, err := tbl.Initialized(); err == nil {
		t.Fatal("read failure swallowed")
	}
}
