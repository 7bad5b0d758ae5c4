package extract

import "testing"

func TestTicker(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean symbol", "AAPL", "AAPL"},
		{"lowercase symbol", "aapl", "AAPL"},
		{"symbol with exchange suffix", "ADS.DE", "ADS.DE"},
		{"numeric korean symbol", "220630.KQ", "220630.KQ"},
		{"private literal", "PRIVATE", TickerPrivate},
		{"private lowercase", "private", TickerPrivate},
		{"private inside commentary", "The company is PRIVATE.", TickerPrivate},
		{"symbol inside commentary", "Ticker is AAPL, a great stock!", "AAPL"},
		{"verbose with suffix symbol", "The symbol is ADS.DE on Xetra", "ADS.DE"},
		{"pure commentary", "I am not sure about that one", TickerUnknown},
		{"empty", "", TickerUnknown},
		{"whitespace only", "   ", TickerUnknown},
		{"overlong single token", "NOTREALLYATICKER", TickerUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ticker(tt.in); got != tt.want {
				t.Errorf("Ticker(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTickerNeverEmpty(t *testing.T) {
	inputs := []string{"", " ", "\n", "!!!", "the is a of", "PRIVATE", "MSFT"}
	for _, in := range inputs {
		if got := Ticker(in); got == "" {
			t.Errorf("Ticker(%q) returned empty string", in)
		}
	}
}

func TestProductCompany(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		wantProduct string
		wantCompany string
	}{
		{
			name:        "well formed",
			in:          "Product: Big Mac | Company: McDonald's",
			wantProduct: "Big Mac",
			wantCompany: "McDonald's",
		},
		{
			name:        "company unknown",
			in:          "Product: Widget X | Company: Unknown",
			wantProduct: "Widget X",
			wantCompany: "Unknown",
		},
		{
			name:        "both unknown",
			in:          "Product: Unknown | Company: Unknown",
			wantProduct: "Unknown",
			wantCompany: "Unknown",
		},
		{
			name:        "empty fields",
			in:          "Product: | Company:",
			wantProduct: "Unknown",
			wantCompany: "Unknown",
		},
		{
			name:        "short bare reply taken as product",
			in:          "iPhone 15 Pro",
			wantProduct: "iPhone 15 Pro",
			wantCompany: "Unknown",
		},
		{
			name:        "long unformatted reply left unknown",
			in:          "This appears to be some kind of consumer electronics device, possibly a phone.",
			wantProduct: "Unknown",
			wantCompany: "Unknown",
		},
		{
			name:        "reply containing Unknown not taken as product",
			in:          "Unknown gadget",
			wantProduct: "Unknown",
			wantCompany: "Unknown",
		},
		{
			name:        "empty",
			in:          "",
			wantProduct: "Unknown",
			wantCompany: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, company := ProductCompany(tt.in)
			if product != tt.wantProduct || company != tt.wantCompany {
				t.Errorf("ProductCompany(%q) = (%q, %q), want (%q, %q)",
					tt.in, product, company, tt.wantProduct, tt.wantCompany)
			}
		})
	}
}

const sectionedResponse = `SECTION: Summary
Inflation cooled to 3 percent last quarter.

SECTION: GenZ Translation
Prices are finally chilling out, no cap.

SECTION: Impact on Young People
Rent and groceries may stop climbing so fast.

SECTION: Impact Rating
4`

func TestBrief(t *testing.T) {
	brief := Brief(sectionedResponse)

	if brief.Summary != "Inflation cooled to 3 percent last quarter." {
		t.Errorf("Summary = %q", brief.Summary)
	}
	if brief.GenZ != "Prices are finally chilling out, no cap." {
		t.Errorf("GenZ = %q", brief.GenZ)
	}
	if brief.Impact != "Rent and groceries may stop climbing so fast." {
		t.Errorf("Impact = %q", brief.Impact)
	}
	if brief.ImpactLevel != 4 {
		t.Errorf("ImpactLevel = %d, want 4", brief.ImpactLevel)
	}
}

func TestBriefMissingSections(t *testing.T) {
	in := `SECTION: Summary
Only a summary here.`

	brief := Brief(in)
	if brief.Summary != "Only a summary here." {
		t.Errorf("Summary = %q", brief.Summary)
	}
	if brief.GenZ != "GenZ translation not found." {
		t.Errorf("GenZ placeholder missing, got %q", brief.GenZ)
	}
	if brief.Impact != "Impact analysis not found." {
		t.Errorf("Impact placeholder missing, got %q", brief.Impact)
	}
	if brief.ImpactLevel != 0 {
		t.Errorf("ImpactLevel = %d, want 0", brief.ImpactLevel)
	}
}

func TestBriefRating(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"valid rating", "SECTION: Impact Rating\n3", 3},
		{"rating out of range", "SECTION: Impact Rating\n9", 0},
		{"zero rating rejected", "SECTION: Impact Rating\n0", 0},
		{"no digit", "SECTION: Impact Rating\nhigh", 0},
		{"marker absent", "no sections at all", 0},
		{"case insensitive marker", "section: impact rating 5", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Brief(tt.in).ImpactLevel; got != tt.want {
				t.Errorf("ImpactLevel = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBriefAlwaysPopulated(t *testing.T) {
	for _, in := range []string{"", "garbage", sectionedResponse} {
		brief := Brief(in)
		if brief.Summary == "" || brief.GenZ == "" || brief.Impact == "" {
			t.Errorf("Brief(%q) left a field empty: %+v", in, brief)
		}
		if brief.ImpactLevel < 0 || brief.ImpactLevel > 5 {
			t.Errorf("Brief(%q) ImpactLevel out of range: %d", in, brief.ImpactLevel)
		}
	}
}

func TestRecommendation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Strong Buy", "Strong Buy"},
		{"buy", "Buy"},
		{"WAIT", "Wait"},
		{"sell", "Sell"},
		{"strong sell", "Strong Sell"},
		{"  Buy  ", "Buy"},
		{"Strongly consider buying", "Wait"},
		{"Hold", "Wait"},
		{"", "Wait"},
	}

	for _, tt := range tests {
		if got := Recommendation(tt.in); got != tt.want {
			t.Errorf("Recommendation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"starbucks.com", "starbucks.com"},
		{"Starbucks.COM", "starbucks.com"},
		{" nike.com ", "nike.com"},
		{"UNKNOWN", ""},
		{"the domain is nike.com", ""},
		{"nodotshere", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Domain(tt.in); got != tt.want {
			t.Errorf("Domain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Extraction must be a pure function of its input.
func TestExtractionIdempotent(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Ticker("Ticker is AAPL, a great stock!"); got != "AAPL" {
			t.Fatalf("run %d: Ticker = %q", i, got)
		}
		product, company := ProductCompany("Product: Big Mac | Company: McDonald's")
		if product != "Big Mac" || company != "McDonald's" {
			t.Fatalf("run %d: ProductCompany = (%q, %q)", i, product, company)
		}
		if got := Brief(sectionedResponse); got.ImpactLevel != 4 {
			t.Fatalf("run %d: ImpactLevel = %d", i, got.ImpactLevel)
		}
	}
}
