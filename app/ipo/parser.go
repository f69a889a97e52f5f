package ipo

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// sectionMode tracks which free-text section of a detail page the line
// scanner is currently inside.
type sectionMode int

const (
	modeNone sectionMode = iota
	modeFundUsage
	modeLockup
	modeAllocation
	modeDistribution
	modeFinancial
)

// sectionTriggers maps section headers to scanner modes. Tested in order,
// substring match.
var sectionTriggers = []struct {
	header string
	mode   sectionMode
}{
	{"Fonun Kullanım Yeri", modeFundUsage},
	{"Satmama Taahhüdü", modeLockup},
	{"Tahsisat Grupları", modeAllocation},
	{"Dağıtılacak Pay Miktarı", modeDistribution},
	{"Finansal Tablo", modeFinancial},
}

// sectionTerminators are headers that close the current section without
// opening a new one.
var sectionTerminators = []string{
	"Şirket Künyesi",
	"Halka Arz Detayları",
	"Önemli Bilgiler",
	"Yorumlar",
	"Benzer Haberler",
}

// financialKeywords gate which lines are worth keeping from the financial
// statements table.
var financialKeywords = []string{
	"Hasılat",
	"Net Kar",
	"Aktif",
	"Özkaynak",
	"FAVÖK",
	"Satış",
}

type Parser struct {
	priceRe    *regexp.Regexp
	hoursRe    *regexp.Regexp
	floatingRe *regexp.Regexp
	discountRe *regexp.Regexp
	sizeRe     *regexp.Regexp
	brokerRe   *regexp.Regexp
	capitalRe  *regexp.Regexp
	saleRe     *regexp.Regexp
	codeRe     *regexp.Regexp
	printer    *message.Printer
}

func NewParser() *Parser {
	return &Parser{
		priceRe:    regexp.MustCompile(`(?s)Halka Arz Fiyatı.*?(\d+[,.]\d{2})`),
		hoursRe:    regexp.MustCompile(`\d{2}:\d{2}\s*-\s*\d{2}:\d{2}`),
		floatingRe: regexp.MustCompile(`Halka Açıklık Oranı\s*:?\s*(%?\s*[\d.,]+)`),
		discountRe: regexp.MustCompile(`İskonto\s*:?\s*(%?\s*[\d.,]+)`),
		sizeRe:     regexp.MustCompile(`Halka Arz Büyüklüğü\s*:?\s*([\d.,]+\s*(?:Milyon|Milyar)?\s*TL)`),
		brokerRe:   regexp.MustCompile(`(?s)Aracı Kurum(.*?)Bist Kodu`),
		capitalRe:  regexp.MustCompile(`Sermaye Artırımı\s*:?\s*([\d.,]+)\s*Lot`),
		saleRe:     regexp.MustCompile(`Ortak Satışı\s*:?\s*([\d.,]+)\s*Lot`),
		codeRe:     regexp.MustCompile(`\(([A-Z]{3,5})\)`),
		printer:    message.NewPrinter(language.Turkish),
	}
}

// Run extracts a Detail from the flattened body text of a detail page.
// Fields whose patterns do not match keep their defaults; Run never fails.
func (p *Parser) Run(text, pageURL string) Detail {
	d := Detail{
		LotCount:         LotCountUnknown,
		DistributionType: DistributionUnknown,
		Market:           MarketStar,
		Slug:             slugFromURL(pageURL),
	}

	if m := p.priceRe.FindStringSubmatch(text); m != nil {
		if price, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64); err == nil {
			d.Price = price
		}
	}

	if m := p.hoursRe.FindString(text); m != "" {
		d.Hours = strings.ReplaceAll(m, " ", "")
	}

	if strings.Contains(text, MarketMain) {
		d.Market = MarketMain
	}

	if strings.Contains(text, DistributionEqual) {
		d.DistributionType = DistributionEqual
	} else if strings.Contains(text, DistributionProRata) {
		d.DistributionType = DistributionProRata
	}

	if m := p.floatingRe.FindStringSubmatch(text); m != nil {
		d.FloatingRate = strings.TrimSpace(m[1])
	}
	if m := p.discountRe.FindStringSubmatch(text); m != nil {
		d.Discount = strings.TrimSpace(m[1])
	}
	if m := p.sizeRe.FindStringSubmatch(text); m != nil {
		d.TotalSize = strings.TrimSpace(m[1])
	}

	d.Broker = p.extractBroker(text)
	d.LotCount = p.aggregateLots(text)

	p.scanSections(text, &d)

	return d
}

// ExtractCode pulls the BIST ticker out of a page title, e.g.
// "Meysu Gıda A.Ş. (MEYSU)" -> "MEYSU".
func (p *Parser) ExtractCode(title string) string {
	if m := p.codeRe.FindStringSubmatch(title); m != nil {
		return m[1]
	}
	return ""
}

// extractBroker captures the block between "Aracı Kurum" and "Bist Kodu",
// keeps the company lines, and joins the first two.
func (p *Parser) extractBroker(text string) string {
	m := p.brokerRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	var brokers []string
	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "A.Ş") && utf8.RuneCountInString(line) < 100 {
			brokers = append(brokers, line)
			if len(brokers) == 2 {
				break
			}
		}
	}

	return strings.Join(brokers, ", ")
}

// aggregateLots sums the capital-increase and shareholder-sale lot counts
// and renders the total the way the site does.
func (p *Parser) aggregateLots(text string) string {
	total := int64(0)
	found := false

	for _, re := range []*regexp.Regexp{p.capitalRe, p.saleRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			raw := strings.NewReplacer(".", "", ",", "").Replace(m[1])
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				total += n
				found = true
			}
		}
	}

	if !found {
		return LotCountUnknown
	}

	if total > 1_000_000 {
		return strconv.FormatFloat(float64(total)/1e6, 'f', 1, 64) + " Milyon"
	}
	return p.printer.Sprintf("%d", total)
}

// scanSections walks the body line by line, switching modes on section
// headers and accumulating bullet lines into the matching list field.
func (p *Parser) scanSections(text string, d *Detail) {
	mode := modeNone
	pendingStability := false
	var financial []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		// "Fiyat İstikrarı" is a one-line lookahead: only the bullet
		// immediately below it is captured.
		if pendingStability {
			if isBullet(line) {
				d.PriceStability = stripBullet(line)
			}
			pendingStability = false
			mode = modeNone
			continue
		}
		if strings.Contains(line, "Fiyat İstikrarı") {
			pendingStability = true
			continue
		}

		if next, ok := transition(line); ok {
			mode = next
			continue
		}

		switch mode {
		case modeFundUsage:
			if isBullet(line) {
				d.FundUsage = append(d.FundUsage, stripBullet(line))
			}
		case modeLockup:
			if isBullet(line) && !strings.Contains(line, "Bist") {
				d.Lockup = append(d.Lockup, stripBullet(line))
			}
		case modeAllocation:
			if (isBullet(line) || strings.HasPrefix(line, "%") || strings.Contains(line, "katılım")) &&
				!strings.Contains(line, "Bist") {
				d.AllocationGroups = append(d.AllocationGroups, stripBullet(line))
			}
		case modeDistribution:
			if isBullet(line) || strings.Contains(line, "Lot") {
				d.Distribution = append(d.Distribution, stripBullet(line))
			}
		case modeFinancial:
			if containsAny(line, financialKeywords) {
				financial = append(financial, line)
			}
		}
	}

	d.FinancialRaw = strings.Join(financial, " ")
}

func transition(line string) (sectionMode, bool) {
	for _, t := range sectionTriggers {
		if strings.Contains(line, t.header) {
			return t.mode, true
		}
	}
	for _, term := range sectionTerminators {
		if strings.Contains(line, term) {
			return modeNone, true
		}
	}
	return modeNone, false
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•")
}

func stripBullet(line string) string {
	line = strings.TrimPrefix(line, "-")
	line = strings.TrimPrefix(line, "•")
	return strings.TrimSpace(line)
}

func containsAny(line string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// slugFromURL derives a slug from the last path segment of a detail URL.
func slugFromURL(pageURL string) string {
	path := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.Trim(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return path
}
