package advice

import (
	"fmt"

	"github.com/eduymaz/aller-mind/internal/inference/groups"
	"github.com/eduymaz/aller-mind/internal/inference/hours"
)

type messageKey int

const (
	stayIndoors messageKey = iota
	maskIfOutside
	windowsClosed
	limitHours
	limitActivities
	safeDay
	carryMedication
	sensitiveGroup
	particulateMask
	ozoneAfternoon
	pollenWindows
	sunProtection
)

var catalog = map[string]map[messageKey]string{
	"en": {
		stayIndoors:     "Staying indoors is recommended",
		maskIfOutside:   "Wear a mask if you need to go outside",
		windowsClosed:   "Keep your windows closed",
		limitHours:      "You can stay outside for at most %.1f hours",
		limitActivities: "Limit your outdoor activities",
		safeDay:         "A safe day, enjoy your time outside",
		carryMedication: "Keep your emergency medication with you",
		sensitiveGroup:  "Take extra care, you are in a sensitive group",
		particulateMask: "Particulate levels are high, a mask is advised outdoors",
		ozoneAfternoon:  "Ozone is high, avoid strenuous activity in the afternoon",
		pollenWindows:   "Pollen is high, keep windows closed and shower after coming home",
		sunProtection:   "UV is very high, use sun protection and seek shade at midday",
	},
	"tr": {
		stayIndoors:     "İç mekanda kalmanız önerilir",
		maskIfOutside:   "Dışarı çıkmanız gerekiyorsa maske takın",
		windowsClosed:   "Pencerelerinizi kapalı tutun",
		limitHours:      "Dışarıda en fazla %.1f saat kalabilirsiniz",
		limitActivities: "Aktivitelerinizi sınırlayın",
		safeDay:         "Güvenli bir gün, rahatça dışarıda vakit geçirebilirsiniz",
		carryMedication: "İlaçlarınızı yanınızda bulundurun",
		sensitiveGroup:  "Ekstra dikkatli olun, hassas grubundasınız",
		particulateMask: "Partikül madde seviyesi yüksek, dışarıda maske kullanın",
		ozoneAfternoon:  "Ozon yüksek, öğleden sonra yorucu aktivitelerden kaçının",
		pollenWindows:   "Polen yüksek, pencereleri kapalı tutun ve eve dönünce duş alın",
		sunProtection:   "UV çok yüksek, güneş koruyucu kullanın ve öğle saatlerinde gölgede kalın",
	},
}

// Recommend returns advice in a fixed order: the risk-level messages, then
// group-specific ones, then one per contributing factor. Unknown locales
// get English.
func Recommend(level hours.Level, groupID int, safeHours float64, factors Factors, locale string) []string {
	msgs, ok := catalog[locale]
	if !ok {
		msgs = catalog["en"]
	}

	var out []string
	switch level {
	case hours.High:
		out = append(out, msgs[stayIndoors], msgs[maskIfOutside], msgs[windowsClosed])
	case hours.Medium:
		out = append(out, fmt.Sprintf(msgs[limitHours], safeHours), msgs[limitActivities])
	default:
		out = append(out, msgs[safeDay])
	}

	switch groupID {
	case groups.Pollen:
		out = append(out, msgs[carryMedication])
	case groups.Sensitive:
		out = append(out, msgs[sensitiveGroup])
	}

	if factors.Has(HighPM10) || factors.Has(HighPM25) {
		out = append(out, msgs[particulateMask])
	}
	if factors.Has(HighOzone) {
		out = append(out, msgs[ozoneAfternoon])
	}
	if factors.Has(HighPollen) {
		out = append(out, msgs[pollenWindows])
	}
	if factors.Has(HighUV) {
		out = append(out, msgs[sunProtection])
	}
	return out
}
