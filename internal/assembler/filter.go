package assembler

import (
	"strings"

	"github.com/Danielle-Barbieri/seat-scout/internal/types"
)

// Rejection names the rule that excluded a place.
type Rejection string

const (
	RejectNoHours              Rejection = "no_hours"
	RejectUnrated              Rejection = "unrated"
	RejectLowRating            Rejection = "low_rating"
	RejectInstitutionalLibrary Rejection = "institutional_library"
	RejectTakeoutOnly          Rejection = "takeout_only"
	RejectFastFood             Rejection = "fast_food"
	RejectBakeryNoDineIn       Rejection = "bakery_no_dine_in"
)

const minRating = 3.0

var (
	institutionalTags     = []string{"university", "school", "primary_school", "secondary_school"}
	institutionalKeywords = []string{"university", "school", "college", "academy", "institute", "campus"}
	publicKeywords        = []string{"public", "city", "county", "town", "municipal", "branch"}
)

// Classify resolves the venue kind of a raw place, or the rule that drops it.
// An empty Rejection means the place is kept.
func Classify(p types.PlaceRecord) (types.VenueKind, Rejection) {
	if len(p.WeekdayDescriptions) == 0 {
		return "", RejectNoHours
	}
	if p.Rating == nil {
		return "", RejectUnrated
	}
	if *p.Rating < minRating {
		return "", RejectLowRating
	}

	cafeTagged := p.HasType("cafe") || p.HasType("coffee_shop")
	bakeryTagged := p.HasType("bakery")

	if p.HasType("library") {
		if IsPublicLibrary(p) {
			return types.VenueLibrary, ""
		}
		if !cafeTagged && !bakeryTagged {
			return "", RejectInstitutionalLibrary
		}
		// falls through and is judged as a cafe
	}

	if cafeTagged {
		if isFalse(p.DineIn) && isTrue(p.Takeout) {
			return "", RejectTakeoutOnly
		}
		if p.HasType("fast_food") && !p.HasType("cafe") {
			return "", RejectFastFood
		}
		return types.VenueCafe, ""
	}

	if bakeryTagged && isFalse(p.DineIn) {
		return "", RejectBakeryNoDineIn
	}
	return types.VenueCafe, ""
}

// IsPublicLibrary reports whether a library-tagged place looks like a public library
// rather than a school or university one.
func IsPublicLibrary(p types.PlaceRecord) bool {
	for _, tag := range institutionalTags {
		if p.HasType(tag) {
			return false
		}
	}
	name := strings.ToLower(p.Name)
	if containsAny(name, institutionalKeywords) {
		return false
	}
	return containsAny(name, publicKeywords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func isTrue(b *bool) bool  { return b != nil && *b }
func isFalse(b *bool) bool { return b != nil && !*b }
