package dataset

import "strings"

// mojibakeReplacer undoes the most common UTF-8-read-as-Windows-1252 damage
// in the upstream JSON feeds. The upstream API intermittently serves
// double-encoded Turkish text; the mapping below is the fixed repair table
// the site has always used.
var mojibakeReplacer = strings.NewReplacer(
	"Ã‡", "Ç",
	"Ã¼", "ü",
	"Ã§", "ç",
	"ÄŸ", "ğ",
	"Ä±", "ı",
	"Ã¶", "ö",
	"ÅŸ", "ş",
	"Ã–", "Ö",
	"Åž", "Ş",
	"Ä°", "İ",
	"Ãœ", "Ü",
	"Äž", "Ğ",
	"Â", "",
)

// FixMojibake repairs double-encoded Turkish characters in raw feed data.
func FixMojibake(s string) string {
	return mojibakeReplacer.Replace(s)
}

// StripBOM removes a UTF-8 byte order mark, which the upstream feeds
// occasionally prepend.
func StripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
