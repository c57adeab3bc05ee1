package puaa

// Category is one of the 30 general categories defined by UAX#44 table 12.
type Category uint8

// General category values, in UAX#44 table order.
const (
	Lu Category = iota // Uppercase_Letter
	Ll                 // Lowercase_Letter
	Lt                 // Titlecase_Letter
	Lm                 // Modifier_Letter
	Lo                 // Other_Letter
	Mn                 // Nonspacing_Mark
	Mc                 // Spacing_Mark
	Me                 // Enclosing_Mark
	Nd                 // Decimal_Number
	Nl                 // Letter_Number
	No                 // Other_Number
	Pc                 // Connector_Punctuation
	Pd                 // Dash_Punctuation
	Ps                 // Open_Punctuation
	Pe                 // Close_Punctuation
	Pi                 // Initial_Punctuation
	Pf                 // Final_Punctuation
	Po                 // Other_Punctuation
	Sm                 // Math_Symbol
	Sc                 // Currency_Symbol
	Sk                 // Modifier_Symbol
	So                 // Other_Symbol
	Zs                 // Space_Separator
	Zl                 // Line_Separator
	Zp                 // Paragraph_Separator
	Cc                 // Control
	Cf                 // Format
	Cs                 // Surrogate
	Co                 // Private_Use
	Cn                 // Unassigned
)

var categoryNames = [...]string{
	"Lu", "Ll", "Lt", "Lm", "Lo",
	"Mn", "Mc", "Me",
	"Nd", "Nl", "No",
	"Pc", "Pd", "Ps", "Pe", "Pi", "Pf", "Po",
	"Sm", "Sc", "Sk", "So",
	"Zs", "Zl", "Zp",
	"Cc", "Cf", "Cs", "Co", "Cn",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "??"
}

// ParseCategory reads a two-letter general category abbreviation.
func ParseCategory(s string) (Category, bool) {
	for i, name := range categoryNames {
		if s == name {
			return Category(i), true
		}
	}
	return Cn, false
}

// BidiClass is one of the 23 bidirectional classes defined by UAX#44
// table 13.
type BidiClass uint8

// Bidi class values.
const (
	BidiL BidiClass = iota
	BidiR
	BidiAL
	BidiEN
	BidiES
	BidiET
	BidiAN
	BidiCS
	BidiNSM
	BidiBN
	BidiB
	BidiS
	BidiWS
	BidiON
	BidiLRE
	BidiLRO
	BidiRLE
	BidiRLO
	BidiPDF
	BidiLRI
	BidiRLI
	BidiFSI
	BidiPDI
)

var bidiNames = [...]string{
	"L", "R", "AL", "EN", "ES", "ET", "AN", "CS", "NSM", "BN",
	"B", "S", "WS", "ON",
	"LRE", "LRO", "RLE", "RLO", "PDF", "LRI", "RLI", "FSI", "PDI",
}

func (b BidiClass) String() string {
	if int(b) < len(bidiNames) {
		return bidiNames[b]
	}
	return "??"
}

// ParseBidiClass reads a bidi class abbreviation.
func ParseBidiClass(s string) (BidiClass, bool) {
	for i, name := range bidiNames {
		if s == name {
			return BidiClass(i), true
		}
	}
	return BidiL, false
}

// NumericType distinguishes the three numeric-value fields of
// UnicodeData.txt. Field 6 implies Decimal, field 7 Digit, field 8
// Numeric.
type NumericType uint8

// Numeric types.
const (
	NumNone NumericType = iota
	NumDecimal
	NumDigit
	NumNumeric
)

var numericNames = [...]string{"None", "Decimal", "Digit", "Numeric"}

func (n NumericType) String() string {
	if int(n) < len(numericNames) {
		return numericNames[n]
	}
	return "??"
}

// AliasType is the third field of NameAliases.txt.
type AliasType uint8

// Name alias types, per UAX#44.
const (
	Correction AliasType = iota
	ControlAlias
	Alternate
	Figment
	Abbreviation
)

var aliasNames = [...]string{
	"correction", "control", "alternate", "figment", "abbreviation",
}

func (a AliasType) String() string {
	if int(a) < len(aliasNames) {
		return aliasNames[a]
	}
	return "??"
}

// ParseAliasType reads a name alias type.
func ParseAliasType(s string) (AliasType, bool) {
	for i, name := range aliasNames {
		if s == name {
			return AliasType(i), true
		}
	}
	return Correction, false
}
