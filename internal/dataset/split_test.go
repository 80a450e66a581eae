package dataset

import (
	"reflect"
	"sort"
	"testing"
)

func TestSplitReproducible(t *testing.T) {
	train1, test1, err := Split(100, 0.25, 1337)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	train2, test2, err := Split(100, 0.25, 1337)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	if !reflect.DeepEqual(train1, train2) || !reflect.DeepEqual(test1, test2) {
		t.Fatal("same seed and n must yield the same partition")
	}
}

func TestSplitSeedChangesPermutation(t *testing.T) {
	train1, _, err := Split(100, 0.25, 1)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	train2, _, err := Split(100, 0.25, 2)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if reflect.DeepEqual(train1, train2) {
		t.Fatal("different seeds should yield different permutations")
	}
}

func TestSplitCoverage(t *testing.T) {
	train, test, err := Split(37, 0.3, 42)
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	all := append(append([]int{}, train...), test...)
	sort.Ints(all)
	if len(all) != 37 {
		t.Fatalf("expected 37 indices, got %d", len(all))
	}
	for i, idx := range all {
		if idx != i {
			t.Fatalf("indices are not a disjoint cover of [0,37): position %d holds %d", i, idx)
		}
	}
}

func TestSplitNExactCount(t *testing.T) {
	train, test, err := SplitN(12, 2, 1337)
	if err != nil {
		t.Fatalf("splitn: %v", err)
	}
	if len(train) != 10 || len(test) != 2 {
		t.Fatalf("expected 10/2 partition, got %d/%d", len(train), len(test))
	}
}

func TestSplitBadArguments(t *testing.T) {
	if _, _, err := Split(0, 0.5, 1); err == nil {
		t.Fatal("expected error for n=0")
	}
	if _, _, err := Split(10, 1.5, 1); err == nil {
		t.Fatal("expected error for fraction > 1")
	}
	if _, _, err := SplitN(10, 11, 1); err == nil {
		t.Fatal("expected error for held-out count > n")
	}
}

func TestTakePreservesCorrespondence(t *testing.T) {
	labels := []string{"a", "b", "c", "d"}
	texts := []string{"ta", "tb", "tc", "td"}
	idx := []int{3, 1}

	gotLabels := Take(labels, idx)
	gotTexts := Take(texts, idx)
	if !reflect.DeepEqual(gotLabels, []string{"d", "b"}) {
		t.Fatalf("unexpected labels %v", gotLabels)
	}
	if !reflect.DeepEqual(gotTexts, []string{"td", "tb"}) {
		t.Fatalf("unexpected texts %v", gotTexts)
	}
}
