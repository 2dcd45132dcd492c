package render

import "strings"

// run is a span of display text, either on the baseline or raised.
type run struct {
	text string
	sup  bool
}

// latexRuns converts the small LaTeX subset used by problems into display
// runs: \frac{a}{b} becomes (a)/(b), \cdot becomes a middle dot and ^{e}
// becomes a superscript run.
func latexRuns(s string) []run {
	s = expandFractions(s)
	s = strings.ReplaceAll(s, `\cdot`, "·")

	var runs []run
	for {
		i := strings.Index(s, "^{")
		if i < 0 {
			break
		}
		end, ok := closingBrace(s, i+1)
		if !ok {
			break
		}
		if i > 0 {
			runs = append(runs, run{text: s[:i]})
		}
		runs = append(runs, run{text: s[i+2 : end], sup: true})
		s = s[end+1:]
	}
	if s != "" {
		runs = append(runs, run{text: s})
	}
	return runs
}

func expandFractions(s string) string {
	const frac = `\frac{`
	for {
		i := strings.Index(s, frac)
		if i < 0 {
			return s
		}
		numEnd, ok := closingBrace(s, i+len(frac)-1)
		if !ok || numEnd+1 >= len(s) || s[numEnd+1] != '{' {
			return s
		}
		denEnd, ok := closingBrace(s, numEnd+1)
		if !ok {
			return s
		}
		num := expandFractions(s[i+len(frac) : numEnd])
		den := expandFractions(s[numEnd+2 : denEnd])
		s = s[:i] + "(" + num + ")/(" + den + ")" + s[denEnd+1:]
	}
}

// closingBrace returns the index of the brace matching the '{' at open.
func closingBrace(s string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
