package interview

import "strconv"

// ParseScore extracts the first contiguous run of digits from an assistant
// response and interprets it as the integer score. The assistant is not
// trusted to return a clean number: "I think it's about 72 out of 100"
// parses to 72. No digits, or a value outside [0,100], is ErrScoreParse.
func ParseScore(text string) (int, error) {
	start := -1
	end := -1
	for i, r := range text {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			end = i + 1
			continue
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return 0, ErrScoreParse
	}
	score, err := strconv.Atoi(text[start:end])
	if err != nil {
		return 0, ErrScoreParse
	}
	if score < 0 || score > 100 {
		return 0, ErrScoreParse
	}
	return score, nil
}
