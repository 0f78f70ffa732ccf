package utils

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCount 右对齐7位并带千位分隔符,如 "  1,234"
func FormatCount(n int) string {
	return fmt.Sprintf("%7s", printer.Sprintf("%d", n))
}

// FormatPercent 保留一位小数的百分比,分母为0时返回 "0.0%"
func FormatPercent(part, total int) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}

// Share 返回 part/total,分母为0时返回0
func Share(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total)
}
