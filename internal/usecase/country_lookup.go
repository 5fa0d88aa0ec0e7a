package usecase

import (
	"fmt"
	"strconv"

	"github.com/boozescore/backend/internal/domain"
)

// gs1Range maps an inclusive range of GS1 company prefixes to a country
type gs1Range struct {
	start, end int
	country    string
}

// gs1Prefixes is ordered; the first matching range wins.
var gs1Prefixes = []gs1Range{
	{0, 19, "USA and Canada"},
	{20, 29, "Unknown"}, // restricted distribution
	{30, 39, "United States"},
	{40, 49, "Unknown"},
	{50, 59, "Unknown"},
	{60, 99, "USA and Canada"},
	{100, 139, "United States"},
	{200, 299, "Unknown"}, // restricted distribution
	{300, 379, "France and Monaco"},
	{380, 380, "Bulgaria"},
	{383, 383, "Slovenia"},
	{385, 385, "Croatia"},
	{387, 387, "Bosnia and Herzegovina"},
	{389, 389, "Montenegro"},
	{400, 440, "Germany"},
	{450, 459, "Japan"},
	{460, 469, "Russia"},
	{470, 470, "Kyrgyzstan"},
	{471, 471, "Taiwan"},
	{474, 474, "Estonia"},
	{475, 475, "Latvia"},
	{476, 476, "Azerbaijan"},
	{477, 477, "Lithuania"},
	{478, 478, "Uzbekistan"},
	{479, 479, "Sri Lanka"},
	{480, 480, "Philippines"},
	{481, 481, "Belarus"},
	{482, 482, "Ukraine"},
	{484, 484, "Moldova"},
	{485, 485, "Armenia"},
	{486, 486, "Georgia"},
	{487, 487, "Kazakhstan"},
	{489, 489, "Hong Kong"},
	{490, 499, "Japan"},
	{500, 509, "United Kingdom"},
	{520, 520, "Greece"},
	{528, 528, "Lebanon"},
	{529, 529, "Cyprus"},
	{530, 530, "Albania"},
	{531, 531, "North Macedonia"},
	{535, 535, "Malta"},
	{539, 539, "Ireland"},
	{540, 549, "Belgium and Luxembourg"},
	{560, 560, "Portugal"},
	{569, 569, "Iceland"},
	{570, 579, "Denmark"},
	{590, 590, "Poland"},
	{594, 594, "Romania"},
	{599, 599, "Hungary"},
	{600, 601, "South Africa"},
	{603, 603, "Ghana"},
	{608, 608, "Bahrain"},
	{609, 609, "Mauritius"},
	{611, 611, "Morocco"},
	{613, 613, "Algeria"},
	{615, 615, "Nigeria"},
	{616, 616, "Kenya"},
	{618, 618, "Ivory Coast"},
	{619, 619, "Tunisia"},
	{620, 620, "Tanzania"},
	{621, 621, "Syria"},
	{622, 622, "Egypt"},
	{623, 623, "Brunei"},
	{624, 624, "Libya"},
	{625, 625, "Jordan"},
	{626, 626, "Iran"},
	{627, 627, "Kuwait"},
	{628, 628, "Saudi Arabia"},
	{629, 629, "United Arab Emirates"},
	{640, 649, "Finland"},
	{690, 699, "China"},
	{700, 709, "Norway"},
	{729, 729, "Israel"},
	{730, 739, "Sweden"},
	{740, 740, "Guatemala"},
	{741, 741, "El Salvador"},
	{742, 742, "Honduras"},
	{743, 743, "Nicaragua"},
	{744, 744, "Costa Rica"},
	{745, 745, "Panama"},
	{746, 746, "Dominican Republic"},
	{750, 750, "Mexico"},
	{754, 755, "Canada"},
	{759, 759, "Venezuela"},
	{760, 769, "Switzerland"},
	{770, 771, "Colombia"},
	{773, 773, "Uruguay"},
	{775, 775, "Peru"},
	{777, 777, "Bolivia"},
	{778, 779, "Argentina"},
	{780, 780, "Chile"},
	{784, 784, "Paraguay"},
	{786, 786, "Ecuador"},
	{789, 790, "Brazil"},
	{800, 839, "Italy"},
	{840, 849, "Spain"},
	{850, 850, "Cuba"},
	{858, 858, "Slovakia"},
	{859, 859, "Czech Republic"},
	{860, 860, "Serbia"},
	{865, 865, "Mongolia"},
	{867, 867, "North Korea"},
	{868, 869, "Turkey"},
	{870, 879, "Netherlands"},
	{880, 880, "South Korea"},
	{884, 884, "Cambodia"},
	{885, 885, "Thailand"},
	{888, 888, "Singapore"},
	{890, 890, "India"},
	{893, 893, "Vietnam"},
	{896, 896, "Pakistan"},
	{899, 899, "Indonesia"},
	{900, 919, "Austria"},
	{930, 939, "Australia"},
	{940, 949, "New Zealand"},
	{950, 950, "Global Office"},
	{955, 955, "Malaysia"},
	{958, 958, "Macau"},
}

// LookupCountry infers the country of origin from a UPC. The three digits
// after the leading digit are matched against the GS1 prefix table.
// It returns ok=false when no range covers the prefix, and an error wrapping
// domain.ErrInvalidUPC when upc is not made of digits.
func LookupCountry(upc string) (country string, ok bool, err error) {
	if !isDigits(upc) {
		return "", false, fmt.Errorf("%w: %q", domain.ErrInvalidUPC, upc)
	}
	if len(upc) < 2 {
		return "", false, nil
	}

	end := min(len(upc), 4)
	prefix, err := strconv.Atoi(upc[1:end])
	if err != nil {
		return "", false, fmt.Errorf("%w: %q", domain.ErrInvalidUPC, upc)
	}

	for _, r := range gs1Prefixes {
		if prefix >= r.start && prefix <= r.end {
			return r.country, true, nil
		}
	}
	return "", false, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
