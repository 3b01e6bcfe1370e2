package queue

import "testing"

var sampleBlocks = []string{
	"1. Introduction",
	"This opening paragraph has well over ten words and it ends with a period.",
	"Chapter 2",
	"Another body paragraph follows here, also with plenty of words and a terminal period.",
	"A third content paragraph rounds out the document with enough words to read as prose.",
}

func TestBuild_SkipsTitles(t *testing.T) {
	items, _ := Build(sampleBlocks, nil)
	if len(items) != 3 {
		t.Fatalf("queue length: got %d, want 3", len(items))
	}
	if len(items) > len(sampleBlocks) {
		t.Fatal("queue must not be longer than the block list")
	}
	wantBlockIdx := []int{1, 3, 4}
	for i, item := range items {
		if item.Index != i {
			t.Fatalf("item %d: dense index got %d", i, item.Index)
		}
		if item.OriginalBlockIndex != wantBlockIdx[i] {
			t.Fatalf("item %d: originalBlockIndex got %d, want %d", i, item.OriginalBlockIndex, wantBlockIdx[i])
		}
		if item.Status != StatusPending {
			t.Fatalf("item %d: status got %q", i, item.Status)
		}
		if item.Mode != ModeAuto {
			t.Fatalf("item %d: mode got %q", i, item.Mode)
		}
	}
}

func TestBuild_BackReferencesUniqueAndIncreasing(t *testing.T) {
	items, _ := Build(sampleBlocks, nil)
	seen := map[int]bool{}
	prev := -1
	for _, item := range items {
		if seen[item.OriginalBlockIndex] {
			t.Fatalf("duplicate originalBlockIndex %d", item.OriginalBlockIndex)
		}
		seen[item.OriginalBlockIndex] = true
		if item.OriginalBlockIndex <= prev {
			t.Fatalf("originalBlockIndex not strictly increasing: %d after %d", item.OriginalBlockIndex, prev)
		}
		prev = item.OriginalBlockIndex
	}
}

func TestBuild_DefaultRiskWhenMissing(t *testing.T) {
	items, _ := Build(sampleBlocks, map[int]Risk{})
	for _, item := range items {
		if item.Risk.Score != 30 || item.Risk.Level != RiskLow || item.Risk.LengthCV != 0.3 {
			t.Fatalf("item %d: expected conservative defaults, got %+v", item.Index, item.Risk)
		}
	}
}

func TestBuild_AutoSelectionIsMediumAndHigh(t *testing.T) {
	risks := map[int]Risk{
		1: {Score: 85, Level: RiskHigh},
		3: {Score: 55, Level: RiskMedium},
		4: {Score: 10, Level: RiskLow},
	}
	items, selected := Build(sampleBlocks, risks)
	if len(items) != 3 {
		t.Fatalf("queue length: got %d", len(items))
	}
	if len(selected) != 2 {
		t.Fatalf("selection: got %v, want exactly the medium/high items", selected)
	}
	if selected[0] != 0 || selected[1] != 1 {
		t.Fatalf("selection: got %v, want [0 1]", selected)
	}
}

func TestBuild_ScenarioFromSplitter(t *testing.T) {
	blocks := []string{
		"1. Introduction",
		"This is a long paragraph with more than ten words ending in a period.",
	}
	items, _ := Build(blocks, nil)
	if len(items) != 1 {
		t.Fatalf("queue length: got %d, want 1", len(items))
	}
	if items[0].OriginalBlockIndex != 1 {
		t.Fatalf("originalBlockIndex: got %d, want 1", items[0].OriginalBlockIndex)
	}
}
