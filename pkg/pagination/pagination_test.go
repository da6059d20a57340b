package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -4: DefaultLimit, 7: 7, 500: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBoundsAndMeta(t *testing.T) {
	p := Params{Page: 2, Limit: 3}
	start, end := p.Bounds(7)
	if start != 3 || end != 6 {
		t.Fatalf("unexpected window [%d,%d)", start, end)
	}
	meta := p.Meta(7)
	if meta.TotalPages != 3 || meta.Page != 2 || meta.Limit != 3 || meta.Total != 7 {
		t.Fatalf("unexpected meta %+v", meta)
	}

	start, end = Params{Page: 9, Limit: 3}.Bounds(7)
	if start != 7 || end != 7 {
		t.Fatalf("expected empty window past the end, got [%d,%d)", start, end)
	}

	if got := (Params{}).Meta(0); got.TotalPages != 0 || got.Page != 1 {
		t.Fatalf("unexpected empty meta %+v", got)
	}
}
