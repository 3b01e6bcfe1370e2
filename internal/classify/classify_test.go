package classify

import "testing"

func TestClassify_StructuralKeywords(t *testing.T) {
	for _, s := range []string{"Abstract", "introduction", "CONCLUSION", "References", "Acknowledgments", "Bibliography", "Appendix"} {
		isHeading, tag := Classify(s)
		if !isHeading {
			t.Fatalf("%q: expected heading", s)
		}
		if tag != RuleStructuralKeyword {
			t.Fatalf("%q: got rule %q, want %q", s, tag, RuleStructuralKeyword)
		}
	}
}

func TestClassify_NumberedSections(t *testing.T) {
	cases := map[string]Rule{
		"1. Introduction": RuleNumberedSection,
		"12. Methods":     RuleNumberedSection,
		"2.3.1 Results":   RuleNumberedSection,
		"3.1 Evaluation":  RuleNumberedSection,
	}
	for s, want := range cases {
		isHeading, tag := Classify(s)
		if !isHeading {
			t.Fatalf("%q: expected heading", s)
		}
		if tag != want {
			t.Fatalf("%q: got rule %q, want %q", s, tag, want)
		}
	}
}

func TestClassify_ChapterPrefix(t *testing.T) {
	isHeading, tag := Classify("Chapter 4")
	if !isHeading || tag != RuleChapterPrefix {
		t.Fatalf("Chapter 4: got (%v, %q)", isHeading, tag)
	}
	isHeading, tag = Classify("section 2")
	if !isHeading || tag != RuleChapterPrefix {
		t.Fatalf("section 2: got (%v, %q)", isHeading, tag)
	}
}

func TestClassify_ShortTitleLine(t *testing.T) {
	isHeading, tag := Classify("Threat Model: Local Attackers")
	if !isHeading {
		t.Fatal("expected heading")
	}
	if tag != RuleShortTitleLine {
		t.Fatalf("got rule %q, want %q", tag, RuleShortTitleLine)
	}
}

func TestClassify_MultiSentenceParagraphIsContent(t *testing.T) {
	p := "This paragraph contains more than fifteen words in total and clearly reads like body text. It even has a second sentence to make the point."
	isHeading, tag := Classify(p)
	if isHeading {
		t.Fatalf("paragraph misclassified as heading by rule %q", tag)
	}
}

func TestClassify_ShortFragmentWithoutPeriod(t *testing.T) {
	isHeading, tag := Classify("key findings and next steps")
	if !isHeading {
		t.Fatal("expected heading")
	}
	// Lowercase start skips the title-line rule; the fragment rule catches it.
	if tag != RuleShortFragment {
		t.Fatalf("got rule %q, want %q", tag, RuleShortFragment)
	}
}

func TestClassify_ShortLineEndingInPeriodIsContent(t *testing.T) {
	if IsTitle("this is a terse but complete little sentence.") {
		t.Fatal("sentence ending in a period must not be a heading")
	}
}

func TestClassify_Deterministic(t *testing.T) {
	in := "2.3.1 Results"
	first, firstTag := Classify(in)
	for i := 0; i < 10; i++ {
		got, tag := Classify(in)
		if got != first || tag != firstTag {
			t.Fatal("classification is not deterministic")
		}
	}
}

func TestClassify_EmptyBlock(t *testing.T) {
	if IsTitle("   ") {
		t.Fatal("whitespace-only block must not be a heading")
	}
}
