package report

import (
	"strings"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

const notAvailable = "n/a"

// fixed renders v with places decimals, or n/a.
func fixed(v optional.Option[float64], places int32) string {
	value, err := v.Take()
	if err != nil {
		return notAvailable
	}

	return decimal.NewFromFloat(value).StringFixed(places)
}

// money renders v as a dollar amount with two decimals.
func money(v optional.Option[float64]) string {
	s := fixed(v, 2)
	if s == notAvailable {
		return s
	}

	if strings.HasPrefix(s, "-") {
		return "-$" + s[1:]
	}

	return "$" + s
}

// signedPercent renders v with an explicit sign, e.g. +3.25%.
func signedPercent(v optional.Option[float64]) string {
	value, err := v.Take()
	if err != nil {
		return notAvailable
	}

	d := decimal.NewFromFloat(value).Round(2)
	s := d.StringFixed(2)

	if !d.IsNegative() {
		s = "+" + s
	}

	return s + "%"
}

// grouped renders v rounded to an integer with thousands separators.
func grouped(v optional.Option[float64]) string {
	value, err := v.Take()
	if err != nil {
		return notAvailable
	}

	s := decimal.NewFromFloat(value).Round(0).StringFixed(0)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	var b strings.Builder

	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}

		b.WriteRune(r)
	}

	return sign + b.String()
}
