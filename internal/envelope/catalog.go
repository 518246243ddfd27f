package envelope

// Tag catalogs the front end knows how to render.
var (
	EnvelopeTextures = []string{
		"linen", "canvas", "watercolor", "parchment", "kraft", "cotton", "smooth", "handmade",
	}

	PaperTextures = []string{
		"vintage-cream", "smooth-white", "watercolor-wash", "torn-edges", "lined-notebook",
		"coffee-stained", "parchment", "soft-blush", "sage-mist", "lavender-haze",
		"sky-whisper", "golden-hour",
	}

	FontPairings = []string{
		"classic", "romantic", "editorial", "modern-serif", "literary", "clean", "soft",
		"bold-classic", "understated", "contrast", "narrative", "sleek", "montserrat",
		"urbanist", "jakarta", "satoshi", "modern-mix", "luxury-sans",
	}

	StampPositions = []string{
		"top-right", "top-left", "bottom-right", "bottom-left", "center",
	}
)

func setOf(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}
