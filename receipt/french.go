package receipt

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pverdier/go-gestion-locative/billing"
)

var frenchOnes = []string{"", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf"}

var frenchTeens = []string{"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize", "dix-sept", "dix-huit", "dix-neuf"}

var frenchTens = []string{"", "", "vingt", "trente", "quarante", "cinquante", "soixante"}

var frenchMonths = []string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// AmountInWords spells a currency amount in French prose, e.g.
// 1234.50 -> "mille deux cent trente-quatre virgule cinquante".
// Cents are rounded to two digits and appended after "virgule".
func AmountInWords(amount float64) string {
	if amount < 0 {
		return "moins " + AmountInWords(-amount)
	}

	integerPart := int(math.Floor(amount))
	cents := int(math.Round((amount - math.Floor(amount)) * 100))
	if cents >= 100 {
		integerPart++
		cents -= 100
	}

	words := IntegerInWords(integerPart)
	if cents > 0 {
		words += " virgule " + IntegerInWords(cents)
	}
	return words
}

// IntegerInWords spells a non-negative integer in French, with the usual
// irregularities: bare "mille" without a leading "un" (but "un million"),
// vigesimal 70s/90s built from teen words, "et" before un/onze where French
// demands it, and a plural "cents"/"vingts" only when nothing follows it.
// "million" is a noun, so its count keeps the plural ("deux cents millions").
func IntegerInWords(n int) string {
	if n == 0 {
		return "zéro"
	}
	if n < 0 {
		return "moins " + IntegerInWords(-n)
	}

	var parts []string
	if n >= 1000000 {
		millions := n / 1000000
		if millions == 1 {
			parts = append(parts, "un million")
		} else {
			parts = append(parts, IntegerInWords(millions), "millions")
		}
		n %= 1000000
	}

	if n >= 1000 {
		thousands := n / 1000
		if thousands == 1 {
			parts = append(parts, "mille")
		} else {
			parts = append(parts, hundredsInWords(thousands, false), "mille")
		}
		n %= 1000
	}

	if n > 0 {
		parts = append(parts, hundredsInWords(n, true))
	}
	return strings.Join(parts, " ")
}

// hundredsInWords spells n in 1..999. terminal reports whether the result
// ends the number, which decides the plural "s" of "cents" and "vingts".
func hundredsInWords(n int, terminal bool) string {
	var sb strings.Builder

	hundreds := n / 100
	remainder := n % 100

	if hundreds == 1 {
		sb.WriteString("cent")
	} else if hundreds > 1 {
		sb.WriteString(frenchOnes[hundreds])
		sb.WriteString(" cent")
		if remainder == 0 && terminal {
			sb.WriteString("s")
		}
	}

	if remainder > 0 {
		if hundreds > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(tensInWords(remainder, terminal))
	}
	return sb.String()
}

// tensInWords spells n in 1..99.
func tensInWords(n int, terminal bool) string {
	switch {
	case n < 10:
		return frenchOnes[n]
	case n < 20:
		return frenchTeens[n-10]
	case n < 70:
		tens := frenchTens[n/10]
		switch n % 10 {
		case 0:
			return tens
		case 1:
			return tens + " et un"
		default:
			return tens + "-" + frenchOnes[n%10]
		}
	case n == 71:
		return "soixante et onze"
	case n < 80:
		return "soixante-" + frenchTeens[n-70]
	case n == 80:
		if terminal {
			return "quatre-vingts"
		}
		return "quatre-vingt"
	case n < 90:
		return "quatre-vingt-" + frenchOnes[n-80]
	default:
		return "quatre-vingt-" + frenchTeens[n-90]
	}
}

// MonthName returns the French name of a month (1-12).
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return frenchMonths[month-1]
}

// FormatPeriod renders the closed billing interval for a month: the 1st and
// the last calendar day, each as "DD <monthname> YYYY".
func FormatPeriod(month, year int) (start, end string) {
	lastDay := billing.DaysInMonth(year, time.Month(month))
	start = fmt.Sprintf("%02d %s %d", 1, MonthName(month), year)
	end = fmt.Sprintf("%02d %s %d", lastDay, MonthName(month), year)
	return start, end
}

// FormatDateFR renders a date the way fr-FR locales do, dd/mm/yyyy.
func FormatDateFR(t time.Time) string {
	return t.Format("02/01/2006")
}

// Honorific maps a tenant's stored title to its capitalized French form.
// Unknown or missing titles fall back to the neutral form.
func Honorific(title string) string {
	switch strings.ToLower(strings.TrimSpace(title)) {
	case "monsieur":
		return "Monsieur"
	case "madame":
		return "Madame"
	case "mademoiselle":
		return "Mademoiselle"
	default:
		return "Monsieur/Madame"
	}
}
