package extraction

import "regexp"

var (
	datePattern          = regexp.MustCompile(`FECHA` + space + `+(\d{2}[-/]\d{2}[-/]\d{4})`)
	timePattern          = regexp.MustCompile(`HORA` + space + `+(\d{2}:\d{2}:\d{2})`)
	totalRoomsPattern    = regexp.MustCompile(totalPattern("TOTAL POR HABITACIONES"))
	totalProductsPattern = regexp.MustCompile(totalPattern("TOTAL POR PRODUCTOS"))
	totalSalesPattern    = regexp.MustCompile(totalPattern("VENTA TOTAL"))
)

func totalPattern(marker string) string {
	return marker + space + `*\$?` + space + `*([\d.,]+)`
}

// extractMetadata fills date, time and the three totals from the first
// occurrence of each marker anywhere in text
func extractMetadata(text string, rec *Record) {
	rec.Date = firstGroup(datePattern, text)
	rec.Time = firstGroup(timePattern, text)
	rec.TotalRooms = Normalize(firstGroup(totalRoomsPattern, text))
	rec.TotalProducts = Normalize(firstGroup(totalProductsPattern, text))
	rec.TotalSales = Normalize(firstGroup(totalSalesPattern, text))
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
