package plate

import "strings"

// homoglyphs maps letters the character detector confuses with digits.
// Applied in this order; the correction is lossy and favors digit-heavy plates.
var homoglyphs = strings.NewReplacer(
	"O", "0",
	"I", "1",
	"L", "1",
	"S", "5",
	"B", "8",
)

var stripper = strings.NewReplacer(" ", "", "_", "")

// Normalize converts a raw glyph string into the canonical plate format.
//
// Spaces and underscores are removed, letters are uppercased and homoglyphs
// corrected. Strings of seven or more characters are split into a three
// character prefix and a tail; a 4-character tail becomes "PPP-TT.TT" and a
// 5-character tail becomes "PPP-TTT.TT". Anything else is returned
// unformatted.
//
//	Normalize("30a12345") == "30A-123.45"
//	Normalize("51l1234")  == "511-12.34"
//	Normalize("AB")       == "A8"
func Normalize(raw string) string {
	s := strings.ToUpper(stripper.Replace(raw))
	s = homoglyphs.Replace(s)

	r := []rune(s)
	if len(r) < 7 {
		return s
	}

	head, tail := string(r[:3]), r[3:]
	switch len(tail) {
	case 4:
		return head + "-" + string(tail[:2]) + "." + string(tail[2:])
	case 5:
		return head + "-" + string(tail[:3]) + "." + string(tail[3:])
	}
	return s
}
