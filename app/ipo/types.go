package ipo

// Listing is a row scraped from an index or category page.
type Listing struct {
	Company string `json:"company"`
	Link    string `json:"link"`
	Status  string `json:"status"`
	Logo    string `json:"logo,omitempty"`
	Code    string `json:"code"`
	Dates   string `json:"dates,omitempty"`
}

// Detail holds the fields recovered from a detail page's flattened body
// text. Every field has a documented default; a page that matches nothing
// produces a usable all-default Detail.
type Detail struct {
	Price            float64  `json:"price"`
	LotCount         string   `json:"lotCount"`
	DistributionType string   `json:"distributionType"`
	Market           string   `json:"market"`
	FloatingRate     string   `json:"floatingRate,omitempty"`
	Discount         string   `json:"discount,omitempty"`
	TotalSize        string   `json:"totalSize,omitempty"`
	Hours            string   `json:"hours,omitempty"`
	PriceStability   string   `json:"priceStability,omitempty"`
	Broker           string   `json:"broker,omitempty"`
	Slug             string   `json:"slug"`
	Lockup           []string `json:"lockup,omitempty"`
	FundUsage        []string `json:"fundUsage,omitempty"`
	AllocationGroups []string `json:"allocation,omitempty"`
	Distribution     []string `json:"distribution,omitempty"`
	FinancialRaw     string   `json:"financials,omitempty"`
}

// Record is a fully normalized IPO listing: index-page data plus the
// extracted detail fields.
type Record struct {
	Listing
	Detail
}

type Partition string

const (
	PartitionActive Partition = "active"
	PartitionDraft  Partition = "draft"
)

// Field defaults and enum values, as published by the site.
const (
	LotCountUnknown     = "Bilinmiyor"
	MarketMain          = "Ana Pazar"
	MarketStar          = "Yıldız Pazar"
	DistributionEqual   = "Eşit Dağıtım"
	DistributionProRata = "Oransal Dağıtım"
	DistributionUnknown = "Bilinmiyor"
)
