// Package pricing считает предварительную стоимость ремонта по статичным
// таблицам: базовая цена категории поломки умножается на коэффициент бренда.
package pricing

import "math"

// issuePrices базовые цены по категориям поломок в рупиях.
var issuePrices = map[string]int{
	"screen-crack": 3500,
	"battery":      1500,
	"charging":     800,
	"speaker":      1000,
	"camera":       2000,
	"water-damage": 4000,
	"software":     500,
	"other":        2000,
}

// brandMultipliers коэффициенты брендов, незнакомый бренд считается за 1.0.
var brandMultipliers = map[string]float64{
	"Apple":    1.8,
	"Samsung":  1.3,
	"Google":   1.2,
	"OnePlus":  1.1,
	"Xiaomi":   1.0,
	"Oppo":     0.9,
	"Vivo":     0.9,
	"Realme":   0.85,
	"Nokia":    0.85,
	"Motorola": 0.8,
}

// Estimate возвращает округленную оценку стоимости ремонта.
// Неизвестная категория считается как "other".
func Estimate(brand, issue string) int {
	basePrice, ok := issuePrices[issue]
	if !ok {
		basePrice = issuePrices["other"]
	}
	multiplier, ok := brandMultipliers[brand]
	if !ok {
		multiplier = 1.0
	}
	return int(math.Round(float64(basePrice) * multiplier))
}

// Issues возвращает список известных категорий поломок.
func Issues() []string {
	result := make([]string, 0, len(issuePrices))
	for issue := range issuePrices {
		result = append(result, issue)
	}
	return result
}

// Brands возвращает список известных брендов.
func Brands() []string {
	result := make([]string, 0, len(brandMultipliers))
	for brand := range brandMultipliers {
		result = append(result, brand)
	}
	return result
}
