package extract

import (
	"regexp"
	"testing"
)

func TestFirst_PatternOrder(t *testing.T) {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`data-name="([^"]+)"`),
		regexp.MustCompile(`<div class="name">([^<]+)</div>`),
	}

	// Primary variant present
	got := First(`<li data-name="삼다수 2L"><div class="name">ignored</div></li>`, patterns)
	if got != "삼다수 2L" {
		t.Errorf("expected primary pattern match, got %q", got)
	}

	// Only the fallback variant present
	got = First(`<li><div class="name">삼다수 2L</div></li>`, patterns)
	if got != "삼다수 2L" {
		t.Errorf("expected fallback pattern match, got %q", got)
	}

	// Neither present
	if got := First(`<li></li>`, patterns); got != "" {
		t.Errorf("expected absent, got %q", got)
	}
}

func TestFirst_SkipsEmptyCapture(t *testing.T) {
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`title="([^"]*)"`),
		regexp.MustCompile(`alt="([^"]*)"`),
	}
	got := First(`<img title="" alt="생수 12병">`, patterns)
	if got != "생수 12병" {
		t.Errorf("empty capture should fall through to next pattern, got %q", got)
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"12,345원", 12345, true},
		{"25000", 25000, true},
		{"<em>9,900</em>", 9900, true},
		{"", 0, false},
		{"품절", 0, false},
		{"0원", 0, false}, // zero after stripping is absent, not free
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePrice(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBlocks_AlternatePattern(t *testing.T) {
	primary := regexp.MustCompile(`(?s)<li class="search-product".*?</li>`)
	alternate := regexp.MustCompile(`(?s)<li class="product-item".*?</li>`)
	patterns := []*regexp.Regexp{primary, alternate}

	drifted := `<ul>` +
		`<li class="product-item">a</li>` +
		`<li class="product-item">b</li>` +
		`</ul>`
	blocks := Blocks(drifted, patterns, 5)
	if len(blocks) != 2 {
		t.Fatalf("alternate pattern should engage when primary yields zero, got %d blocks", len(blocks))
	}
}

func TestBlocks_Cap(t *testing.T) {
	var page string
	for i := 0; i < 20; i++ {
		page += `<li class="search-product">x</li>`
	}
	blocks := Blocks(page, []*regexp.Regexp{regexp.MustCompile(`(?s)<li class="search-product".*?</li>`)}, 5)
	if len(blocks) != 5 {
		t.Errorf("expected cap of 5 blocks, got %d", len(blocks))
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags("<b>제주</b> 삼다수 &amp; 무라벨\n  2L")
	if got != "제주 삼다수 & 무라벨 2L" {
		t.Errorf("StripTags = %q", got)
	}
}

func TestFloat(t *testing.T) {
	patterns := []*regexp.Regexp{regexp.MustCompile(`<em class="rating">([^<]+)</em>`)}
	v, ok := Float(`<em class="rating">4.5</em>`, patterns)
	if !ok || v != 4.5 {
		t.Errorf("Float = (%v, %v), want (4.5, true)", v, ok)
	}
	if _, ok := Float(`<em class="rating"></em>`, patterns); ok {
		t.Error("expected absent rating")
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		raw, base, want string
	}{
		{"//thumbnail1.coupangcdn.com/a.jpg", "https://www.coupang.com", "https://thumbnail1.coupangcdn.com/a.jpg"},
		{"/vp/products/123", "https://www.coupang.com", "https://www.coupang.com/vp/products/123"},
		{"https://cdn.11st.co.kr/b.png", "https://www.11st.co.kr", "https://cdn.11st.co.kr/b.png"},
		{"", "https://www.coupang.com", ""},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.raw, tt.base); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q) = %q, want %q", tt.raw, tt.base, got, tt.want)
		}
	}
}
