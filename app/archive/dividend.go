package archive

import (
	"time"

	"github.com/araddon/dateparse"
)

// Dividend mirrors one row of the upstream dividend calendar feed. Field
// names follow the feed's own keys.
type Dividend struct {
	Code        string `json:"t_bistkod"`
	Company     string `json:"t_sirket"`
	NetAmount   string `json:"t_temt_net,omitempty"`
	Yield       string `json:"t_yuzde,omitempty"`
	Date        string `json:"t_tarih,omitempty"`
	PaymentDate string `json:"t_odemetarihi,omitempty"`
	Link        string `json:"t_link,omitempty"`
	Paid        string `json:"t_ok,omitempty"`
}

// paymentTime parses the payment date, which upstream delivers in several
// formats and occasionally as prose. ok is false when there is nothing
// usable, in which case the record counts as upcoming.
func (d Dividend) paymentTime() (time.Time, bool) {
	if d.PaymentDate == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(d.PaymentDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// key identifies a dividend for archive merging.
func (d Dividend) key() string {
	return d.Code + "|" + d.PaymentDate
}
