package portfolio

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/seenimoa/propfolio/pkg/models"
	"github.com/seenimoa/propfolio/pkg/utils"
)

// Share-code record layout, one record per property:
//
//	name|price_millions|rent_thousands|reno_millions|downPaymentPercent|rate|termYears|afterRenoValue_millions|costs_thousands
//
// Records are joined with ";" and the whole grid is standard base64 of
// the UTF-8 bytes. Prices and renovation figures travel in millions,
// rents and recurring costs in thousands; percentages and the term are
// verbatim. Codes minted before the renovation-value field carry only
// the first 7 fields.

// EncodeShareCode packs properties into a compact code for URLs.
// Property names are sanitized so the grid stays parseable; ids and
// derived fields do not travel, the receiving side recomputes.
func EncodeShareCode(props []models.Property) string {
	records := make([]string, 0, len(props))
	for _, p := range props {
		fields := []string{
			utils.SanitizeShareName(p.Name),
			formatShareNumber(utils.ToMillions(p.Price)),
			formatShareNumber(utils.ToThousands(p.Rent)),
			formatShareNumber(utils.ToMillions(p.RenovationCost)),
			formatShareNumber(p.DownPaymentPercent),
			formatShareNumber(p.AnnualInterestRate),
			strconv.Itoa(p.LoanTermYears),
			formatShareNumber(utils.ToMillions(p.PostRenovationValue)),
			formatShareNumber(utils.ToThousands(p.MonthlyRecurringCosts)),
		}
		records = append(records, strings.Join(fields, "|"))
	}
	return base64.StdEncoding.EncodeToString([]byte(strings.Join(records, ";")))
}

// DecodeShareCode unpacks a share code into raw properties. Decoded
// records have no id and no derived fields; they are meant to flow
// through Migrate or SaveProperty, which mint and recompute.
//
// Records with fewer than 7 fields are skipped. Unparseable numbers
// decode as 0, matching the engine's clamping philosophy. Legacy
// 7-field records leave the renovation value and recurring costs at
// their documented defaults.
func DecodeShareCode(code string) ([]models.Property, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("decode share code: %w", err)
	}

	var out []models.Property
	for _, record := range strings.Split(string(raw), ";") {
		if record == "" {
			continue
		}
		fields := strings.Split(record, "|")
		if len(fields) < 7 {
			continue
		}
		p := models.Property{
			Name:               fields[0],
			Price:              utils.FromMillions(parseShareNumber(fields[1])),
			Rent:               utils.FromThousands(parseShareNumber(fields[2])),
			RenovationCost:     utils.FromMillions(parseShareNumber(fields[3])),
			DownPaymentPercent: parseShareNumber(fields[4]),
			AnnualInterestRate: parseShareNumber(fields[5]),
			LoanTermYears:      int(parseShareNumber(fields[6])),
		}
		if len(fields) >= 8 {
			p.PostRenovationValue = utils.FromMillions(parseShareNumber(fields[7]))
		}
		if len(fields) >= 9 {
			p.MonthlyRecurringCosts = utils.FromThousands(parseShareNumber(fields[8]))
		}
		out = append(out, p)
	}
	return out, nil
}

// formatShareNumber renders v with the fewest digits that round-trip.
func formatShareNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseShareNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
