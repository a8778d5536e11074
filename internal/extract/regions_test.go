package extract

import (
	"strings"
	"testing"
)

func TestRegionExtractor_BodyAndMenu(t *testing.T) {
	extractor := NewRegionExtractor()

	page := `
	<html>
	<body>
		<nav><a href="/services">Cancer Treatment</a><a href="/about">About Us</a></nav>
		<main>
			<p>Our therapy is guaranteed to cure your condition.</p>
		</main>
		<footer>Contact us | Privacy Policy</footer>
	</body>
	</html>
	`

	regions, err := extractor.Extract(page, "https://clinic.example.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var body, menus int
	for _, r := range regions {
		if r.SourceLabel != "https://clinic.example.com" {
			t.Errorf("expected source label on every region, got %q", r.SourceLabel)
		}
		if r.IsMenuRegion {
			menus++
		} else {
			body++
		}
	}
	if body != 1 {
		t.Errorf("expected 1 body region, got %d", body)
	}
	if menus != 2 {
		t.Errorf("expected 2 menu regions (nav, footer), got %d", menus)
	}

	for _, r := range regions {
		if r.IsMenuRegion && strings.Contains(r.Text, "guaranteed") {
			t.Error("body text must not leak into menu regions")
		}
		if !r.IsMenuRegion {
			if strings.Contains(r.Text, "Cancer Treatment") {
				t.Error("nav text must not leak into the body region")
			}
			if !strings.Contains(r.Text, "guaranteed to cure") {
				t.Errorf("body region missing main text: %q", r.Text)
			}
		}
	}
}

func TestRegionExtractor_RoleAndClassMarkers(t *testing.T) {
	extractor := NewRegionExtractor()

	page := `
	<html><body>
		<div role="navigation"><a href="/">Pain-Free Dentistry</a></div>
		<ul class="main-menu"><li>Laser Therapy</li></ul>
		<div class="navbar-brand">Smile Clinic</div>
		<p>Body paragraph text.</p>
	</body></html>
	`

	regions, err := extractor.Extract(page, "page")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	menuText := ""
	for _, r := range regions {
		if r.IsMenuRegion {
			menuText += r.Text + " "
		}
	}
	for _, want := range []string{"Pain-Free Dentistry", "Laser Therapy", "Smile Clinic"} {
		if !strings.Contains(menuText, want) {
			t.Errorf("expected %q in a menu region", want)
		}
	}
}

func TestRegionExtractor_SkipsScriptsAndStyles(t *testing.T) {
	extractor := NewRegionExtractor()

	page := `
	<html><body>
		<script>var cure = "guaranteed";</script>
		<style>.cure { color: red; }</style>
		<noscript>enable javascript</noscript>
		<p>Visible text only.</p>
	</body></html>
	`

	regions, err := extractor.Extract(page, "page")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if strings.Contains(regions[0].Text, "guaranteed") || strings.Contains(regions[0].Text, "javascript") {
		t.Errorf("script/style/noscript content leaked: %q", regions[0].Text)
	}
	if !strings.Contains(regions[0].Text, "Visible text only.") {
		t.Errorf("expected visible text, got %q", regions[0].Text)
	}
}

func TestRegionExtractor_NoContent(t *testing.T) {
	extractor := NewRegionExtractor()

	regions, err := extractor.Extract("<html><body><script>x</script></body></html>", "empty")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("expected no regions for a content-free page, got %d", len(regions))
	}
}

func TestRegionExtractor_NestedMenuNotDoubled(t *testing.T) {
	extractor := NewRegionExtractor()

	page := `
	<html><body>
		<nav>
			<ul class="main-menu"><li>Services</li></ul>
		</nav>
		<p>Body.</p>
	</body></html>
	`

	regions, err := extractor.Extract(page, "page")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	menus := 0
	for _, r := range regions {
		if r.IsMenuRegion {
			menus++
		}
	}
	if menus != 1 {
		t.Errorf("a menu inside a menu must yield one region, got %d", menus)
	}
}
