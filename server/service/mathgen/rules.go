package mathgen

import (
	"fmt"
	"strconv"
	"strings"
)

type factor struct {
	name string
	exp  int
}

// monomial formats coef followed by its factors, e.g. 12x^{7}y. Factors with a
// zero exponent are dropped and an exponent of one is left implicit.
func monomial(coef int, factors ...factor) string {
	var b strings.Builder
	for _, f := range factors {
		switch f.exp {
		case 0:
		case 1:
			b.WriteString(f.name)
		default:
			fmt.Fprintf(&b, "%s^{%d}", f.name, f.exp)
		}
	}
	vars := b.String()
	switch {
	case coef == 0:
		return "0"
	case vars == "":
		return strconv.Itoa(coef)
	case coef == 1:
		return vars
	case coef == -1:
		return "-" + vars
	default:
		return strconv.Itoa(coef) + vars
	}
}

func fraction(num, den string) string {
	if den == "1" {
		return num
	}
	return fmt.Sprintf(`\frac{%s}{%s}`, num, den)
}

func ipow(base, exp int) int {
	out := 1
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

// power formats v^{exp} keeping the exponent even when it is 1 or negative.
func power(v string, exp int) string {
	return fmt.Sprintf("%s^{%d}", v, exp)
}

// product: v^a · v^b = v^(a+b)
func product(v string, a, b int) Problem {
	return Problem{
		Text:   power(v, a) + ` \cdot ` + power(v, b),
		Answer: monomial(1, factor{v, a + b}),
	}
}

// quotient: v^a / v^b = v^(a-b), a > b
func quotient(v string, a, b int) Problem {
	return Problem{
		Text:   fraction(power(v, a), power(v, b)),
		Answer: monomial(1, factor{v, a - b}),
	}
}

// powerOfPower: (v^a)^b = v^(ab)
func powerOfPower(v string, a, b int) Problem {
	return Problem{
		Text:   fmt.Sprintf("(%s)^{%d}", power(v, a), b),
		Answer: monomial(1, factor{v, a * b}),
	}
}

// coefficientProduct: (c1 v^a)(c2 v^b) = c1c2 v^(a+b)
func coefficientProduct(v string, c1, a, c2, b int) Problem {
	return Problem{
		Text:   fmt.Sprintf("(%d%s)(%d%s)", c1, power(v, a), c2, power(v, b)),
		Answer: monomial(c1*c2, factor{v, a + b}),
	}
}

// powerOfProduct: (c v^a)^b = c^b v^(ab)
func powerOfProduct(v string, c, a, b int) Problem {
	return Problem{
		Text:   fmt.Sprintf("(%d%s)^{%d}", c, power(v, a), b),
		Answer: monomial(ipow(c, b), factor{v, a * b}),
	}
}

// zeroExponent: c(v^a)^0 = c
func zeroExponent(v string, c, a int) Problem {
	return Problem{
		Text:   fmt.Sprintf("%d(%s)^{0}", c, power(v, a)),
		Answer: strconv.Itoa(c),
	}
}

// negativeProduct: v^-a · v^b = v^(b-a), b > a
func negativeProduct(v string, a, b int) Problem {
	return Problem{
		Text:   power(v, -a) + ` \cdot ` + power(v, b),
		Answer: monomial(1, factor{v, b - a}),
	}
}

// twoVariableQuotient: (cn x^xn y^yn) / (cd x^xd y^yd), with cd | cn, xn > xd, yd > yn.
func twoVariableQuotient(cn, xn, yn, cd, xd, yd int) Problem {
	return Problem{
		Text: fraction(
			fmt.Sprintf("%d%s%s", cn, power("x", xn), power("y", yn)),
			fmt.Sprintf("%d%s%s", cd, power("x", xd), power("y", yd)),
		),
		Answer: fraction(monomial(cn/cd, factor{"x", xn - xd}), monomial(1, factor{"y", yd - yn})),
	}
}

// negativePower: (x^-a y^b)^-c = x^(ac) / y^(bc)
func negativePower(a, b, c int) Problem {
	return Problem{
		Text:   fmt.Sprintf("(%s%s)^{%d}", power("x", -a), power("y", b), -c),
		Answer: fraction(monomial(1, factor{"x", a * c}), monomial(1, factor{"y", b * c})),
	}
}

// mixedProduct: (c1 x^a y^-b)(c2 x^-c y^d) = c1c2 x^(a-c) y^(d-b), a > c, d > b
func mixedProduct(c1, a, b, c2, c, d int) Problem {
	return Problem{
		Text: fmt.Sprintf("(%d%s%s)(%d%s%s)",
			c1, power("x", a), power("y", -b),
			c2, power("x", -c), power("y", d)),
		Answer: monomial(c1*c2, factor{"x", a - c}, factor{"y", d - b}),
	}
}
