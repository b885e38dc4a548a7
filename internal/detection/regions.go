package detection

// DropEnclosing removes every region that fully contains another region of
// the same page, keeping the innermost crops. Two identical regions contain
// each other and are both removed. The order of the survivors is preserved.
func DropEnclosing(regions []Coords) []Coords {
	kept := make([]Coords, 0, len(regions))
	for i, outer := range regions {
		encloses := false
		for j, inner := range regions {
			if i != j && contains(outer, inner) {
				encloses = true
				break
			}
		}
		if !encloses {
			kept = append(kept, outer)
		}
	}
	return kept
}

func contains(outer, inner Coords) bool {
	return inner.Left >= outer.Left &&
		inner.Left+inner.Width <= outer.Left+outer.Width &&
		inner.Top >= outer.Top &&
		inner.Top+inner.Height <= outer.Top+outer.Height
}
