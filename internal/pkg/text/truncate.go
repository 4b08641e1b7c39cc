package text

// Truncate limits the string to max runes and appends ellipsis when exceeding.
// Rune-based so Korean headlines are not cut mid-character.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
