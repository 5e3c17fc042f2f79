package his

import (
	"testing"

	"codtool/internal/codec"
)

func TestTStackPushPopWide(t *testing.T) {
	var s TStack
	if err := s.Push(tInt, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Push(tLong, 1); err != nil {
		t.Fatal(err)
	}
	if len(s) != 3 { // 1 int slot + 2 long slots
		t.Fatalf("len = %d, want 3", len(s))
	}
	popped, err := s.Pop(2)
	if err != nil {
		t.Fatal(err)
	}
	if popped[0].Code != tLong.Code || popped[1].Code != tLong.Code {
		t.Errorf("popped = %+v, want two long slots", popped)
	}
	if s.Top().Code != tInt.Code {
		t.Errorf("top = %+v, want int", s.Top())
	}
}

func TestTStackUnderflow(t *testing.T) {
	var s TStack
	if _, err := s.Pop(1); err == nil {
		t.Fatal("expected underflow error on empty stack")
	}
}

func TestTStackOverflow(t *testing.T) {
	var s TStack
	for i := 0; i < maxStackSlots; i++ {
		if err := s.Push(tInt, 1); err != nil {
			t.Fatalf("unexpected overflow at slot %d: %v", i, err)
		}
	}
	if err := s.Push(tInt, 1); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestMergeTokensPrimitive(t *testing.T) {
	merged := mergeTokens([]*codec.TypeToken{tInt, tInt})
	if merged.JTS() != tInt.JTS() {
		t.Errorf("merge of two ints = %v, want int", merged)
	}
}

func TestMergeTokensConcreteBeatsWildcard(t *testing.T) {
	merged := mergeTokens([]*codec.TypeToken{tObject, tWild})
	if merged.JTS() != tObject.JTS() {
		t.Errorf("merge of object with an unscanned (wildcard) predecessor = %v, want the concrete object type", merged.JTS())
	}
}

func TestMergeTokensIncompatiblePrimitivesFallBackToWildcard(t *testing.T) {
	merged := mergeTokens([]*codec.TypeToken{tInt, tObject})
	if merged.JTS() != "*" {
		t.Errorf("merge of int with object = %v, want * (genuine mismatch)", merged.JTS())
	}
}

func TestMergeListsElementwise(t *testing.T) {
	a := TStack{tInt, tObject}
	b := TStack{tInt, tWild}
	merged := mergeLists([]TStack{a, b})
	if len(merged) != 2 {
		t.Fatalf("len = %d, want 2", len(merged))
	}
	if merged[0].JTS() != tInt.JTS() {
		t.Errorf("column 0 = %v, want int", merged[0].JTS())
	}
	if merged[1].JTS() != tObject.JTS() {
		t.Errorf("column 1 = %v, want the concrete object type (wildcard predecessor loses)", merged[1].JTS())
	}
}
