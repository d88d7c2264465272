package shop

import "fmt"

// FormatMoney renders minor units as "12.50 USD".
func FormatMoney(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
	if currency == "" {
		return s
	}
	return s + " " + currency
}
