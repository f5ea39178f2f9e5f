package board

import (
	"strings"
	"unicode"
)

// Mirror returns the colour-flipped position: ranks reversed, piece colours
// swapped and the other side to move. Move counters are kept.
func (p *Position) Mirror() *Position {
	fields := strings.Fields(p.FEN())

	ranks := strings.Split(fields[0], "/")
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	fields[0] = swapCase(strings.Join(ranks, "/"))

	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	if fields[2] != "-" {
		fields[2] = sortRights(swapCase(fields[2]))
	}
	if ep := fields[3]; ep != "-" && len(ep) == 2 {
		fields[3] = string([]byte{ep[0], '1' + '8' - ep[1]})
	}

	mirrored, err := parseFEN(strings.Join(fields, " "))
	if err != nil {
		panic(err)
	}
	return mirrored
}

func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsUpper(r) {
			return unicode.ToLower(r)
		}
		return unicode.ToUpper(r)
	}, s)
}

// sortRights restores the KQkq order FEN expects.
func sortRights(rights string) string {
	var out strings.Builder
	for _, r := range "KQkq" {
		if strings.ContainsRune(rights, r) {
			out.WriteRune(r)
		}
	}
	return out.String()
}
