package ipo

// activeStatuses is the exact set of status strings the site uses for
// listings still in play. Matching is deliberately literal: no trimming,
// no case folding. Anything else, including the empty string, is a draft.
var activeStatuses = map[string]struct{}{
	"Talep Toplanıyor":  {},
	"Yeni":              {},
	"Onaylı":            {},
	"Başvuru Sürecinde": {},
}

func Classify(statusText string) Partition {
	if _, ok := activeStatuses[statusText]; ok {
		return PartitionActive
	}
	return PartitionDraft
}
