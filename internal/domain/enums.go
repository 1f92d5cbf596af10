package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Category is the catalog section a cake is listed under.
type Category uint8

// Category values.
const (
	CategoryBirthday Category = iota
	CategoryAnniversary
	CategoryWedding
	CategoryKids
	CategoryCustom
	categoryCount
)

// Occasion is an event a cake is suitable for.
type Occasion uint8

// Occasion values.
const (
	OccasionBirthday Occasion = iota
	OccasionAnniversary
	OccasionWedding
	OccasionGraduation
	OccasionBabyShower
	OccasionCorporate
	OccasionValentines
	OccasionOther
	occasionCount
)

// RecipientType describes who a cake is meant for.
type RecipientType uint8

// RecipientType values.
const (
	RecipientKids RecipientType = iota
	RecipientCouple
	RecipientCorporate
	RecipientFamily
	RecipientIndividual
	recipientCount
)

// Size is a cake diameter offered by the bakery.
type Size uint8

// Size values.
const (
	SizeSmall Size = iota
	SizeMedium
	SizeLarge
	SizeExtraLarge
	sizeCount
)

var categoryCodes = [...]string{
	CategoryBirthday:    "birthday",
	CategoryAnniversary: "anniversary",
	CategoryWedding:     "wedding",
	CategoryKids:        "kids",
	CategoryCustom:      "custom",
}

var categoryLabels = [...]string{
	CategoryBirthday:    "Birthday",
	CategoryAnniversary: "Anniversary",
	CategoryWedding:     "Wedding",
	CategoryKids:        "Kids",
	CategoryCustom:      "Custom",
}

var occasionCodes = [...]string{
	OccasionBirthday:    "birthday",
	OccasionAnniversary: "anniversary",
	OccasionWedding:     "wedding",
	OccasionGraduation:  "graduation",
	OccasionBabyShower:  "baby-shower",
	OccasionCorporate:   "corporate",
	OccasionValentines:  "valentines",
	OccasionOther:       "other",
}

var occasionLabels = [...]string{
	OccasionBirthday:    "Birthday",
	OccasionAnniversary: "Anniversary",
	OccasionWedding:     "Wedding",
	OccasionGraduation:  "Graduation",
	OccasionBabyShower:  "Baby Shower",
	OccasionCorporate:   "Corporate Event",
	OccasionValentines:  "Valentine's Day",
	OccasionOther:       "Other",
}

var recipientCodes = [...]string{
	RecipientKids:       "kids",
	RecipientCouple:     "couple",
	RecipientCorporate:  "corporate",
	RecipientFamily:     "family",
	RecipientIndividual: "individual",
}

var recipientLabels = [...]string{
	RecipientKids:       "For Kids",
	RecipientCouple:     "For Couples",
	RecipientCorporate:  "Corporate",
	RecipientFamily:     "For Family",
	RecipientIndividual: "Individual",
}

var sizeCodes = [...]string{
	SizeSmall:      "small",
	SizeMedium:     "medium",
	SizeLarge:      "large",
	SizeExtraLarge: "xl",
}

var sizeLabels = [...]string{
	SizeSmall:      `6" (6-8 servings)`,
	SizeMedium:     `8" (10-14 servings)`,
	SizeLarge:      `10" (16-20 servings)`,
	SizeExtraLarge: `12" (24-30 servings)`,
}

// sizeMultipliers scale a product's base price. Small is the baseline.
var sizeMultipliers = [...]decimal.Decimal{
	SizeSmall:      decimal.NewFromInt(1),
	SizeMedium:     decimal.New(14, -1),
	SizeLarge:      decimal.New(18, -1),
	SizeExtraLarge: decimal.New(22, -1),
}

// Every table must cover every enum value; a missing entry is a compile error.
var (
	_ = [1]struct{}{}[len(categoryCodes)-int(categoryCount)]
	_ = [1]struct{}{}[len(categoryLabels)-int(categoryCount)]
	_ = [1]struct{}{}[len(occasionCodes)-int(occasionCount)]
	_ = [1]struct{}{}[len(occasionLabels)-int(occasionCount)]
	_ = [1]struct{}{}[len(recipientCodes)-int(recipientCount)]
	_ = [1]struct{}{}[len(recipientLabels)-int(recipientCount)]
	_ = [1]struct{}{}[len(sizeCodes)-int(sizeCount)]
	_ = [1]struct{}{}[len(sizeLabels)-int(sizeCount)]
	_ = [1]struct{}{}[len(sizeMultipliers)-int(sizeCount)]
)

// parseCode looks up s in an enum's code table.
func parseCode[T ~uint8](codes []string, s string) (T, bool) {
	for i, c := range codes {
		if c == s {
			return T(i), true
		}
	}
	return 0, false
}

func unmarshalCode[T ~uint8](kind string, codes []string, text []byte, dst *T) error {
	v, ok := parseCode[T](codes, string(text))
	if !ok {
		return fmt.Errorf("unknown %s %q", kind, string(text))
	}
	*dst = v
	return nil
}

// --- Category ---

// ParseCategory returns the category for a wire code such as "wedding".
func ParseCategory(s string) (Category, bool) { return parseCode[Category](categoryCodes[:], s) }

// Categories returns every category in declaration order.
func Categories() []Category {
	out := make([]Category, categoryCount)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// Valid reports whether c is a declared category.
func (c Category) Valid() bool { return c < categoryCount }

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
	return categoryCodes[c]
}

// Label returns the display label.
func (c Category) Label() string {
	if !c.Valid() {
		return ""
	}
	return categoryLabels[c]
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", uint8(c))
	}
	return []byte(categoryCodes[c]), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	return unmarshalCode("category", categoryCodes[:], text, c)
}

// --- Occasion ---

// ParseOccasion returns the occasion for a wire code such as "baby-shower".
func ParseOccasion(s string) (Occasion, bool) { return parseCode[Occasion](occasionCodes[:], s) }

// Occasions returns every occasion in declaration order.
func Occasions() []Occasion {
	out := make([]Occasion, occasionCount)
	for i := range out {
		out[i] = Occasion(i)
	}
	return out
}

// Valid reports whether o is a declared occasion.
func (o Occasion) Valid() bool { return o < occasionCount }

func (o Occasion) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Occasion(%d)", uint8(o))
	}
	return occasionCodes[o]
}

// Label returns the display label.
func (o Occasion) Label() string {
	if !o.Valid() {
		return ""
	}
	return occasionLabels[o]
}

func (o Occasion) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid occasion %d", uint8(o))
	}
	return []byte(occasionCodes[o]), nil
}

func (o *Occasion) UnmarshalText(text []byte) error {
	return unmarshalCode("occasion", occasionCodes[:], text, o)
}

// --- RecipientType ---

// ParseRecipientType returns the recipient type for a wire code such as "couple".
func ParseRecipientType(s string) (RecipientType, bool) {
	return parseCode[RecipientType](recipientCodes[:], s)
}

// RecipientTypes returns every recipient type in declaration order.
func RecipientTypes() []RecipientType {
	out := make([]RecipientType, recipientCount)
	for i := range out {
		out[i] = RecipientType(i)
	}
	return out
}

// Valid reports whether r is a declared recipient type.
func (r RecipientType) Valid() bool { return r < recipientCount }

func (r RecipientType) String() string {
	if !r.Valid() {
		return fmt.Sprintf("RecipientType(%d)", uint8(r))
	}
	return recipientCodes[r]
}

// Label returns the display label.
func (r RecipientType) Label() string {
	if !r.Valid() {
		return ""
	}
	return recipientLabels[r]
}

func (r RecipientType) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid recipient type %d", uint8(r))
	}
	return []byte(recipientCodes[r]), nil
}

func (r *RecipientType) UnmarshalText(text []byte) error {
	return unmarshalCode("recipient type", recipientCodes[:], text, r)
}

// --- Size ---

// ParseSize returns the size for a wire code such as "medium" or "xl".
func ParseSize(s string) (Size, bool) { return parseCode[Size](sizeCodes[:], s) }

// Sizes returns every size in declaration order, smallest first.
func Sizes() []Size {
	out := make([]Size, sizeCount)
	for i := range out {
		out[i] = Size(i)
	}
	return out
}

// Valid reports whether s is a declared size.
func (s Size) Valid() bool { return s < sizeCount }

func (s Size) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Size(%d)", uint8(s))
	}
	return sizeCodes[s]
}

// Label returns the display label, e.g. `8" (10-14 servings)`.
func (s Size) Label() string {
	if !s.Valid() {
		return ""
	}
	return sizeLabels[s]
}

// Multiplier returns the factor applied to a base price at this size.
// Invalid sizes have a zero multiplier.
func (s Size) Multiplier() decimal.Decimal {
	if !s.Valid() {
		return decimal.Zero
	}
	return sizeMultipliers[s]
}

func (s Size) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid size %d", uint8(s))
	}
	return []byte(sizeCodes[s]), nil
}

func (s *Size) UnmarshalText(text []byte) error {
	return unmarshalCode("size", sizeCodes[:], text, s)
}
