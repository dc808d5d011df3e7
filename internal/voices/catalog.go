// Package voices provides the bidirectional mapping between human-facing voice
// display names and the canonical codes the backends consume.
package voices

import "fmt"

// unknownVoiceFormat is the synthesized label for codes without a display mapping.
const unknownVoiceFormat = "%s (Unknown)"

// codeToDisplay maps canonical voice codes to their decorated display names
// (language flag, name, gender, quality grade). The reverse mapping is derived
// at construction time; every display name maps to exactly one code.
var codeToDisplay = map[string]string{
	// American English
	"af_alloy":   "🇺🇸 Alloy 🚺 (C)",
	"af_aoede":   "🇺🇸 Aoede 🚺 (C+)",
	"af_bella":   "🇺🇸 Bella 🚺🔥 (A-)",
	"af_heart":   "🇺🇸 Heart 🚺❤️ (A)",
	"af_jessica": "🇺🇸 Jessica 🚺 (D)",
	"af_kore":    "🇺🇸 Kore 🚺 (C+)",
	"af_nicole":  "🇺🇸 Nicole 🚺🎧 (B-)",
	"af_nova":    "🇺🇸 Nova 🚺 (C)",
	"af_river":   "🇺🇸 River 🚺 (D)",
	"af_sarah":   "🇺🇸 Sarah 🚺 (C+)",
	"af_sky":     "🇺🇸 Sky 🚺 (C-)",

	"am_adam":    "🇺🇸 Adam 🚹 (F+)",
	"am_echo":    "🇺🇸 Echo 🚹 (D)",
	"am_eric":    "🇺🇸 Eric 🚹 (D)",
	"am_fenrir":  "🇺🇸 Fenrir 🚹 (C+)",
	"am_liam":    "🇺🇸 Liam 🚹 (D)",
	"am_michael": "🇺🇸 Michael 🚹 (C+)",
	"am_onyx":    "🇺🇸 Onyx 🚹 (D)",
	"am_puck":    "🇺🇸 Puck 🚹 (C+)",
	"am_santa":   "🇺🇸 Santa 🚹 (D-)",

	// British English
	"bf_alice":    "🇬🇧 Alice 🚺 (D)",
	"bf_emma":     "🇬🇧 Emma 🚺 (B-)",
	"bf_isabella": "🇬🇧 Isabella 🚺 (C)",
	"bf_lily":     "🇬🇧 Lily 🚺 (D)",

	"bm_daniel": "🇬🇧 Daniel 🚹 (D)",
	"bm_fable":  "🇬🇧 Fable 🚹 (C)",
	"bm_george": "🇬🇧 George 🚹 (C)",
	"bm_lewis":  "🇬🇧 Lewis 🚹 (D+)",

	// Japanese
	"jf_alpha":      "🇯🇵 Alpha 🚺 (C+)",
	"jf_gongitsune": "🇯🇵 Gongitsune 🚺 (C)",
	"jf_nezumi":     "🇯🇵 Nezumi 🚺 (C-)",
	"jf_tebukuro":   "🇯🇵 Tebukuro 🚺 (C)",
	"jm_kumo":       "🇯🇵 Kumo 🚹 (C-)",

	// Mandarin Chinese
	"zf_xiaobei":  "🇨🇳 Xiaobei 🚺 (D)",
	"zf_xiaoni":   "🇨🇳 Xiaoni 🚺 (D)",
	"zf_xiaoxiao": "🇨🇳 Xiaoxiao 🚺 (D)",
	"zf_xiaoyi":   "🇨🇳 Xiaoyi 🚺 (D)",
	"zm_yunjian":  "🇨🇳 Yunjian 🚹 (D)",
	"zm_yunxi":    "🇨🇳 Yunxi 🚹 (D)",
	"zm_yunxia":   "🇨🇳 Yunxia 🚹 (D)",
	"zm_yunyang":  "🇨🇳 Yunyang 🚹 (D)",

	// Spanish
	"ef_dora":  "🇪🇸 Dora 🚺",
	"em_alex":  "🇪🇸 Alex 🚹",
	"em_santa": "🇪🇸 Santa 🚹",

	// French
	"ff_siwis": "🇫🇷 Siwis 🚺 (B-)",

	// Hindi
	"hf_alpha": "🇮🇳 Alpha 🚺 (C)",
	"hf_beta":  "🇮🇳 Beta 🚺 (C)",
	"hm_omega": "🇮🇳 Omega 🚹 (C)",
	"hm_psi":   "🇮🇳 Psi 🚹 (C)",

	// Italian
	"if_sara":   "🇮🇹 Sara 🚺 (C)",
	"im_nicola": "🇮🇹 Nicola 🚹 (C)",

	// Brazilian Portuguese
	"pf_dora":  "🇧🇷 Dora 🚺",
	"pm_alex":  "🇧🇷 Alex 🚹",
	"pm_santa": "🇧🇷 Santa 🚹",
}

// Catalog resolves heterogeneous voice identifiers. Resolution is total: unknown
// input is returned unchanged so an unrecognized-but-possibly-valid code can
// still be attempted by the backend, which owns the final availability check.
type Catalog struct {
	codeToDisplay map[string]string
	displayToCode map[string]string
}

// NewCatalog builds a catalog from the built-in voice table.
func NewCatalog() *Catalog {
	displayToCode := make(map[string]string, len(codeToDisplay))
	for code, display := range codeToDisplay {
		displayToCode[display] = code
	}

	return &Catalog{
		codeToDisplay: codeToDisplay,
		displayToCode: displayToCode,
	}
}

// Resolve maps a display name to its canonical code. Known codes and unknown
// identifiers pass through unchanged.
func (c *Catalog) Resolve(identifier string) string {
	if _, ok := c.codeToDisplay[identifier]; ok {
		return identifier
	}

	if code, ok := c.displayToCode[identifier]; ok {
		return code
	}

	return identifier
}

// DisplayNames maps raw voice codes to their display names, preserving input
// order and duplicates. Codes without a mapping get a synthesized fallback label.
func (c *Catalog) DisplayNames(rawCodes []string) []string {
	names := make([]string, 0, len(rawCodes))

	for _, code := range rawCodes {
		display, ok := c.codeToDisplay[code]
		if !ok {
			display = fmt.Sprintf(unknownVoiceFormat, code)
		}

		names = append(names, display)
	}

	return names
}
